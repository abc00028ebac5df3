package phash

import "github.com/vmchale/phash-fut/luma"

// LuminanceSource provides access to greyscale luminance values for an image.
// *luma.Image satisfies it.
type LuminanceSource interface {
	// Row returns a row of luminance data. If row is non-nil and large enough,
	// it should be reused.
	Row(y int, row []float32) []float32

	// Matrix returns the entire luminance matrix in row-major order.
	Matrix() []float32

	// Width returns the width of the image.
	Width() int

	// Height returns the height of the image.
	Height() int
}

// toLuma returns src as a *luma.Image, copying only when src is some other
// LuminanceSource implementation.
func toLuma(src LuminanceSource) (*luma.Image, error) {
	if m, ok := src.(*luma.Image); ok {
		return m, nil
	}
	w, h := src.Width(), src.Height()
	if w <= 0 || h <= 0 {
		return luma.New(0, 0), nil
	}
	return luma.FromPixels(w, h, src.Matrix())
}
