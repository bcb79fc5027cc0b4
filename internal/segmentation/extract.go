package segmentation

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/cocosip/go-dicom/pkg/dicom/parser"
	"github.com/cocosip/go-dicom/pkg/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/tiff"
)

const dicomMIME = "application/dicom"

var rasterMIMEs = []string{"image/png", "image/jpeg", "image/tiff"}

// LoadSlice decodes the file at path, picks slice sliceIndex of a stack
// (0 is the first, and the only one for planar images) and min-max
// normalizes it.
func LoadSlice(path string, sliceIndex int) (*NormalizedSlice, error) {
	raw, err := ExtractSlice(path, sliceIndex)
	if err != nil {
		return nil, err
	}
	return Normalize(raw), nil
}

// ExtractSlice decodes one 2D plane from a DICOM file (single or
// multi-frame) or a planar raster image, without rescaling.
func ExtractSlice(path string, sliceIndex int) (*RawSlice, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if st.Size() == 0 {
		return nil, fmt.Errorf("%w: empty file %s", ErrDecode, filepath.Base(path))
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: detect format: %w", ErrDecode, err)
	}

	// DICOM files written without the 128 byte preamble are not sniffable.
	if mtype.Is(dicomMIME) || strings.EqualFold(filepath.Ext(path), ".dcm") {
		return decodeDICOM(path, sliceIndex)
	}
	if mimetype.EqualsAny(mtype.String(), rasterMIMEs...) {
		if sliceIndex != 0 {
			return nil, fmt.Errorf("%w: slice %d requested from a planar image", ErrDecode, sliceIndex)
		}
		return decodeRaster(path)
	}
	return nil, fmt.Errorf("%w: unsupported format %s", ErrDecode, mtype.String())
}

func decodeDICOM(path string, sliceIndex int) (*RawSlice, error) {
	res, err := parser.ParseFile(path, parser.WithReadOption(parser.ReadAll))
	if err != nil {
		return nil, fmt.Errorf("%w: parse dicom: %w", ErrDecode, err)
	}
	pd, err := imaging.CreatePixelData(res.Dataset)
	if err != nil {
		return nil, fmt.Errorf("%w: pixel data: %w", ErrDecode, err)
	}

	frames := int(pd.FrameCount())
	if frames == 0 {
		return nil, fmt.Errorf("%w: dicom has no frames", ErrDecode)
	}
	if sliceIndex < 0 || sliceIndex >= frames {
		return nil, fmt.Errorf("%w: slice %d out of range [0, %d)", ErrDecode, sliceIndex, frames)
	}
	frame, err := pd.GetFrame(sliceIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: frame %d: %w", ErrDecode, sliceIndex, err)
	}

	info := pd.Info
	return samplesToSlice(frame, sampleLayout{
		Height:  int(info.Height),
		Width:   int(info.Width),
		Samples: int(info.SamplesPerPixel),
		Bits:    int(info.BitsAllocated),
		Signed:  int(info.PixelRepresentation) == 1,
	})
}

// sampleLayout describes an interleaved little-endian native pixel buffer.
type sampleLayout struct {
	Height  int
	Width   int
	Samples int
	Bits    int
	Signed  bool
}

func samplesToSlice(buf []byte, l sampleLayout) (*RawSlice, error) {
	if l.Height <= 0 || l.Width <= 0 {
		return nil, fmt.Errorf("%w: zero-dimensional image %dx%d", ErrDecode, l.Width, l.Height)
	}
	if l.Samples <= 0 {
		l.Samples = 1
	}
	if l.Bits != 8 && l.Bits != 16 && l.Bits != 32 {
		return nil, fmt.Errorf("%w: unsupported bits allocated %d", ErrDecode, l.Bits)
	}
	step := l.Bits / 8
	need := l.Height * l.Width * l.Samples * step
	if len(buf) < need {
		return nil, fmt.Errorf("%w: pixel buffer has %d bytes, need %d", ErrDecode, len(buf), need)
	}

	raw := &RawSlice{Grid: *NewGrid(l.Height, l.Width)}
	for i := range raw.Data {
		var sum float64
		for s := 0; s < l.Samples; s++ {
			off := (i*l.Samples + s) * step
			sum += readSample(buf[off:off+step], l.Bits, l.Signed)
		}
		raw.Data[i] = sum / float64(l.Samples)
	}
	return raw, nil
}

func readSample(b []byte, bits int, signed bool) float64 {
	switch bits {
	case 8:
		if signed {
			return float64(int8(b[0]))
		}
		return float64(b[0])
	case 16:
		v := binary.LittleEndian.Uint16(b)
		if signed {
			return float64(int16(v))
		}
		return float64(v)
	default:
		v := binary.LittleEndian.Uint32(b)
		if signed {
			return float64(int32(v))
		}
		return float64(v)
	}
}

func decodeRaster(path string) (*RawSlice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %w", ErrDecode, err)
	}
	return imageToSlice(img)
}

func imageToSlice(img image.Image) (*RawSlice, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: zero-dimensional image", ErrDecode)
	}
	raw := &RawSlice{Grid: *NewGrid(b.Dy(), b.Dx())}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			raw.Data[y*b.Dx()+x] = float64(g.Y)
		}
	}
	return raw, nil
}
