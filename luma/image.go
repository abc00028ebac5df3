// Package luma provides a float32 greyscale grid used as the working image
// type for filtering and hashing.
package luma

import (
	"errors"
	"image"
	"image/color"
)

// ErrDimensions is returned when pixel data does not match the requested
// width and height.
var ErrDimensions = errors.New("luma: dimensions do not match pixel data")

// Image is a row-major grid of luminance samples. Decoded images carry values
// in [0, 255]; filtered or transformed grids may hold any float32 value.
//
// Image also implements image.Image and draw.Image through the 16-bit grey
// color model, so it can be encoded and scaled with the usual packages. That
// view clamps samples to [0, 255].
type Image struct {
	pix    []float32
	width  int
	height int
}

// New creates a zeroed Image of the given size.
func New(width, height int) *Image {
	if width <= 0 || height <= 0 {
		return &Image{}
	}
	return &Image{
		pix:    make([]float32, width*height),
		width:  width,
		height: height,
	}
}

// FromPixels wraps pix as a width x height image without copying it.
func FromPixels(width, height int, pix []float32) (*Image, error) {
	if width < 0 || height < 0 || len(pix) != width*height {
		return nil, ErrDimensions
	}
	if width == 0 || height == 0 {
		return &Image{}, nil
	}
	return &Image{pix: pix, width: width, height: height}, nil
}

// FromRows copies a slice of equally sized rows into a new Image.
func FromRows(rows [][]float32) (*Image, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return &Image{}, nil
	}
	w := len(rows[0])
	m := New(w, len(rows))
	for y, row := range rows {
		if len(row) != w {
			return nil, ErrDimensions
		}
		copy(m.pix[y*w:], row)
	}
	return m, nil
}

// Width returns the width of the image.
func (m *Image) Width() int { return m.width }

// Height returns the height of the image.
func (m *Image) Height() int { return m.height }

// Empty reports whether the image has no samples.
func (m *Image) Empty() bool { return m.width == 0 || m.height == 0 }

// Value returns the sample at (x, y).
func (m *Image) Value(x, y int) float32 {
	return m.pix[y*m.width+x]
}

// SetValue sets the sample at (x, y).
func (m *Image) SetValue(x, y int, v float32) {
	m.pix[y*m.width+x] = v
}

// Row returns a row of samples. If row is non-nil and large enough it is
// reused. Out-of-range rows return nil.
func (m *Image) Row(y int, row []float32) []float32 {
	if y < 0 || y >= m.height {
		return nil
	}
	if len(row) < m.width {
		row = make([]float32, m.width)
	}
	offset := y * m.width
	copy(row, m.pix[offset:offset+m.width])
	return row
}

// Matrix returns a copy of all samples in row-major order.
func (m *Image) Matrix() []float32 {
	result := make([]float32, len(m.pix))
	copy(result, m.pix)
	return result
}

// Pix returns the backing slice. Writes to it are visible in the image.
func (m *Image) Pix() []float32 { return m.pix }

// Rows returns the samples as a slice of row slices sharing the backing
// storage.
func (m *Image) Rows() [][]float32 {
	rows := make([][]float32, m.height)
	for y := range rows {
		rows[y] = m.pix[y*m.width : (y+1)*m.width]
	}
	return rows
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	return &Image{pix: m.Matrix(), width: m.width, height: m.height}
}

// ColorModel returns color.Gray16Model.
func (m *Image) ColorModel() color.Model { return color.Gray16Model }

// Bounds returns the rectangle (0, 0)-(width, height).
func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.width, m.height) }

// At returns the sample at (x, y) as a 16-bit grey color.
func (m *Image) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(m.Bounds())) {
		return color.Gray16{}
	}
	return color.Gray16{Y: toGray16(m.pix[y*m.width+x])}
}

// RGBA64At is the allocation-free form of At.
func (m *Image) RGBA64At(x, y int) color.RGBA64 {
	if !(image.Point{x, y}.In(m.Bounds())) {
		return color.RGBA64{}
	}
	v := toGray16(m.pix[y*m.width+x])
	return color.RGBA64{R: v, G: v, B: v, A: 0xffff}
}

// Set stores the luminance of c at (x, y).
func (m *Image) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(m.Bounds())) {
		return
	}
	g := color.Gray16Model.Convert(c).(color.Gray16)
	m.pix[y*m.width+x] = fromGray16(g.Y)
}

// SetRGBA64 is the allocation-free form of Set.
func (m *Image) SetRGBA64(x, y int, c color.RGBA64) {
	if !(image.Point{x, y}.In(m.Bounds())) {
		return
	}
	// Same weights as color.Gray16Model.
	yy := (19595*uint32(c.R) + 38470*uint32(c.G) + 7471*uint32(c.B) + 1<<15) >> 16
	m.pix[y*m.width+x] = fromGray16(uint16(yy))
}

func toGray16(v float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 0xffff
	}
	return uint16(v*(0xffff/255.0) + 0.5)
}

func fromGray16(v uint16) float32 {
	return float32(v) * (255.0 / 0xffff)
}
