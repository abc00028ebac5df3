package phash

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/vmchale/phash-fut/luma"
)

// FromImage converts a Go image.Image to a luminance grid with values in
// [0, 255], using L = 0.299 R + 0.587 G + 0.114 B on un-premultiplied 8-bit
// components. Alpha is ignored.
func FromImage(img image.Image) *luma.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	m := luma.New(w, h)
	if m.Empty() {
		return m
	}
	pix := m.Pix()

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			for x := 0; x < w; x++ {
				pix[y*w+x] = float32(src.Pix[off+x])
			}
		}
	case *image.Gray16:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				pix[y*w+x] = float32(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y) / 257
			}
		}
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := src.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
				pix[y*w+x] = luminance(c.R, c.G, c.B)
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
				pix[y*w+x] = luminance(c.R, c.G, c.B)
			}
		}
	}
	return m
}

func luminance(r, g, b uint8) float32 {
	return float32(r)*299/1000 + float32(g)*587/1000 + float32(b)*114/1000
}

// Decode decodes an image in any registered format: JPEG, PNG, GIF, BMP,
// TIFF or WebP.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Load reads and decodes the image file at path into a luminance grid.
func Load(path string) (*luma.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return FromImage(img), nil
}
