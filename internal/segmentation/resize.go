package segmentation

import "math"

// resizeBilinear resamples g to height x width with half-pixel aligned
// bilinear interpolation. Samples falling outside the source are clamped to
// the border.
func resizeBilinear(g *Grid, height, width int) *Grid {
	out := NewGrid(height, width)
	if g.Height == height && g.Width == width {
		copy(out.Data, g.Data)
		return out
	}
	sy := float64(g.Height) / float64(height)
	sx := float64(g.Width) / float64(width)

	xs := make([]axisSample, width)
	for x := range xs {
		xs[x] = sampleAxis(x, sx, g.Width)
	}
	for y := 0; y < height; y++ {
		ys := sampleAxis(y, sy, g.Height)
		row0 := g.Data[ys.lo*g.Width : (ys.lo+1)*g.Width]
		row1 := g.Data[ys.hi*g.Width : (ys.hi+1)*g.Width]
		for x, xa := range xs {
			top := row0[xa.lo]*(1-xa.frac) + row0[xa.hi]*xa.frac
			bottom := row1[xa.lo]*(1-xa.frac) + row1[xa.hi]*xa.frac
			out.Data[y*width+x] = top*(1-ys.frac) + bottom*ys.frac
		}
	}
	return out
}

type axisSample struct {
	lo, hi int
	frac   float64
}

func sampleAxis(dst int, scale float64, n int) axisSample {
	src := (float64(dst)+0.5)*scale - 0.5
	if src < 0 {
		src = 0
	}
	lo := int(math.Floor(src))
	if lo > n-1 {
		lo = n - 1
	}
	hi := lo + 1
	if hi > n-1 {
		hi = n - 1
	}
	return axisSample{lo: lo, hi: hi, frac: src - float64(lo)}
}

// resizeNearest resamples a binary mask so values stay in {0, 1}. Output
// pixel d reads source pixel floor(d*src/dst).
func resizeNearest(m *BinaryMask, height, width int) *BinaryMask {
	out := &BinaryMask{Shape: Shape{Height: height, Width: width}, Data: make([]uint8, height*width)}
	xs := nearestIndex(m.Width, width)
	for y, sy := range nearestIndex(m.Height, height) {
		row := m.Data[sy*m.Width : (sy+1)*m.Width]
		for x, sx := range xs {
			out.Data[y*width+x] = row[sx]
		}
	}
	return out
}

func nearestIndex(src, dst int) []int {
	idx := make([]int, dst)
	for d := range idx {
		s := d * src / dst
		if s > src-1 {
			s = src - 1
		}
		idx[d] = s
	}
	return idx
}
