package segmentation

// labelComponents labels 8-connected foreground pixels. Labels are numbered
// from 1 in raster order of each component's first pixel; 0 is background.
// The returned count includes the background label.
func labelComponents(m *BinaryMask) ([]int32, int) {
	labels := make([]int32, len(m.Data))
	parent := []int32{0}

	find := func(l int32) int32 {
		for parent[l] != l {
			parent[l] = parent[parent[l]]
			l = parent[l]
		}
		return l
	}
	union := func(a, b int32) int32 {
		ra, rb := find(a), find(b)
		if ra == rb {
			return ra
		}
		if ra < rb {
			parent[rb] = ra
			return ra
		}
		parent[ra] = rb
		return rb
	}

	h, w := m.Height, m.Width
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if m.Data[i] == 0 {
				continue
			}
			var l int32
			// Already visited neighbours: W, NW, N, NE.
			for _, d := range [4][2]int{{0, -1}, {-1, -1}, {-1, 0}, {-1, 1}} {
				ny, nx := y+d[0], x+d[1]
				if ny < 0 || nx < 0 || nx >= w {
					continue
				}
				nl := labels[ny*w+nx]
				if nl == 0 {
					continue
				}
				if l == 0 {
					l = find(nl)
				} else {
					l = union(l, nl)
				}
			}
			if l == 0 {
				l = int32(len(parent))
				parent = append(parent, l)
			}
			labels[i] = l
		}
	}

	// Compact roots to consecutive ids in order of first appearance.
	remap := make([]int32, len(parent))
	next := int32(1)
	for i, l := range labels {
		if l == 0 {
			continue
		}
		r := find(l)
		if remap[r] == 0 {
			remap[r] = next
			next++
		}
		labels[i] = remap[r]
	}
	return labels, int(next)
}

// KeepLargestComponent returns a new mask holding only the largest
// 8-connected foreground component. On equal sizes the component whose
// first pixel comes first in raster order wins. Empty masks are returned as
// an empty copy.
func KeepLargestComponent(m *BinaryMask) *BinaryMask {
	out := &BinaryMask{Shape: m.Shape, Data: make([]uint8, len(m.Data))}
	labels, count := labelComponents(m)
	if count <= 1 {
		return out
	}

	sizes := make([]int, count)
	for _, l := range labels {
		sizes[l]++
	}
	best := int32(1)
	for l := 2; l < count; l++ {
		if sizes[l] > sizes[best] {
			best = int32(l)
		}
	}
	for i, l := range labels {
		if l == best {
			out.Data[i] = 1
		}
	}
	return out
}
