package segmentation

import "image"

// MaskImage renders the mask as 8-bit grayscale, foreground 255.
func MaskImage(m *BinaryMask) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Data {
		if v > 0 {
			img.Pix[i] = 255
		}
	}
	return img
}

// SliceImage renders the normalized slice as 8-bit grayscale. Values are
// scaled by 255 and truncated.
func SliceImage(s *NormalizedSlice) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, s.Width, s.Height))
	for i, v := range s.Data {
		switch {
		case v <= 0:
		case v >= 1:
			img.Pix[i] = 255
		default:
			img.Pix[i] = uint8(v * 255)
		}
	}
	return img
}
