package luma

import (
	"fmt"
	"strings"

	"golang.org/x/image/draw"
)

// Resize scales src to width x height using interp. A nil interp means
// draw.BiLinear. The source is left untouched.
func Resize(src *Image, width, height int, interp draw.Interpolator) *Image {
	dst := New(width, height)
	if src.Empty() || dst.Empty() {
		return dst
	}
	if interp == nil {
		interp = draw.BiLinear
	}
	interp.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// ParseInterpolator maps a name to a draw.Interpolator. Recognised names are
// "nearest", "approx-bilinear", "bilinear" and "catmull-rom".
func ParseInterpolator(name string) (draw.Interpolator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "nearest", "nearest-neighbor":
		return draw.NearestNeighbor, nil
	case "approx-bilinear":
		return draw.ApproxBiLinear, nil
	case "", "bilinear":
		return draw.BiLinear, nil
	case "catmull-rom", "cubic":
		return draw.CatmullRom, nil
	default:
		return nil, fmt.Errorf("luma: unknown interpolator %q", name)
	}
}

// InterpolatorName is the inverse of ParseInterpolator. Interpolators it does
// not recognise are named "custom".
func InterpolatorName(interp draw.Interpolator) string {
	switch interp {
	case draw.NearestNeighbor:
		return "nearest"
	case draw.ApproxBiLinear:
		return "approx-bilinear"
	case draw.BiLinear:
		return "bilinear"
	case draw.CatmullRom:
		return "catmull-rom"
	default:
		return "custom"
	}
}
