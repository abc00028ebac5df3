package luma

// Range returns the smallest and largest sample. An empty image yields (0, 0).
func (m *Image) Range() (lo, hi float32) {
	if m.Empty() {
		return 0, 0
	}
	lo, hi = m.pix[0], m.pix[0]
	for _, v := range m.pix[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// Normalize returns a copy of src mapped affinely so its smallest sample
// becomes lo and its largest becomes hi. A flat image maps every sample to
// the midpoint of [lo, hi].
//
// Resize samples through the 16-bit view, which clamps to [0, 255];
// normalizing onto that band first keeps grids of any range intact.
func Normalize(src *Image, lo, hi float32) *Image {
	dst := New(src.width, src.height)
	if src.Empty() {
		return dst
	}
	smin, smax := src.Range()
	if smax == smin {
		mid := lo + (hi-lo)/2
		for i := range dst.pix {
			dst.pix[i] = mid
		}
		return dst
	}
	scale := float64(hi-lo) / (float64(smax) - float64(smin))
	for i, v := range src.pix {
		dst.pix[i] = lo + float32((float64(v)-float64(smin))*scale)
	}
	return dst
}
