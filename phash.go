// Package phash computes DCT-based perceptual hashes of images.
//
// The hash pipeline smooths the luminance grid with a 7x7 mean filter,
// stretches it onto [0, 255], resamples it to 32x32, takes the 2D DCT-II and thresholds the 8x8 block of
// lowest non-DC frequencies against its median. Visually similar images end
// up with hashes that differ in few bits.
package phash

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/image/draw"

	"github.com/vmchale/phash-fut/dct"
	"github.com/vmchale/phash-fut/filter"
	"github.com/vmchale/phash-fut/luma"
)

const (
	// DefaultKernelSize is the side of the mean filter window.
	DefaultKernelSize = filter.DefaultSize

	// DefaultHashSize is the side of the coefficient block used for Hash.
	DefaultHashSize = 8

	// dctScale is the ratio between the resampled image side and the hash side.
	dctScale = 4
)

// Options configures the filtering and hashing pipeline.
type Options struct {
	// KernelSize is the mean filter window side. Must be odd. Zero selects
	// DefaultKernelSize.
	KernelSize int

	// Interpolator resamples the filtered image before the DCT. Nil selects
	// draw.BiLinear.
	Interpolator draw.Interpolator

	// Workers bounds the goroutines used by the mean filter. Values below 2
	// run it on the calling goroutine.
	Workers int

	// HashSize is the coefficient block side used by ExtHash. Zero selects
	// DefaultHashSize.
	HashSize int
}

// Hasher runs the pipeline with a fixed set of options. It is safe for
// concurrent use.
type Hasher struct {
	kernelSize int
	interp     draw.Interpolator
	workers    int
	hashSize   int
}

var defaultHasher = &Hasher{
	kernelSize: DefaultKernelSize,
	interp:     draw.BiLinear,
	workers:    1,
	hashSize:   DefaultHashSize,
}

// NewHasher validates opts and returns a Hasher. Nil opts selects the
// defaults.
func NewHasher(opts *Options) (*Hasher, error) {
	h := *defaultHasher
	if opts == nil {
		return &h, nil
	}
	if opts.KernelSize != 0 {
		if opts.KernelSize < 0 || opts.KernelSize%2 == 0 {
			return nil, ErrKernelSize
		}
		h.kernelSize = opts.KernelSize
	}
	if opts.Interpolator != nil {
		h.interp = opts.Interpolator
	}
	if opts.Workers > 1 {
		h.workers = opts.Workers
	}
	if opts.HashSize != 0 {
		if opts.HashSize < 2 {
			return nil, ErrHashSize
		}
		h.hashSize = opts.HashSize
	}
	return &h, nil
}

// KernelSize returns the mean filter window side.
func (h *Hasher) KernelSize() int { return h.kernelSize }

// HashSize returns the coefficient block side used by ExtHash.
func (h *Hasher) HashSize() int { return h.hashSize }

// Fingerprint names the options that change the Hash values h produces, such
// as "k7-bilinear". Workers and HashSize do not and are left out.
func (h *Hasher) Fingerprint() string {
	return fmt.Sprintf("k%d-%s", h.kernelSize, luma.InterpolatorName(h.interp))
}

// MeanFilter smooths src with the configured mean filter.
func (h *Hasher) MeanFilter(ctx context.Context, src LuminanceSource) (*luma.Image, error) {
	m, err := toLuma(src)
	if err != nil {
		return nil, err
	}
	out, err := filter.MeanParallel(ctx, m, h.kernelSize, h.workers)
	if errors.Is(err, filter.ErrKernelSize) {
		return nil, ErrKernelSize
	}
	return out, err
}

// Hash computes the 64-bit perceptual hash of src.
func (h *Hasher) Hash(ctx context.Context, src LuminanceSource) (Hash, error) {
	coeffs, err := h.coefficients(ctx, src, DefaultHashSize)
	if err != nil {
		return 0, err
	}
	var hash Hash
	for i, above := range threshold(coeffs) {
		if above {
			hash |= 1 << uint(i)
		}
	}
	return hash, nil
}

// ExtHash computes a perceptual hash of HashSize()^2 bits. The image is
// resampled to 4*HashSize() on a side before the DCT.
func (h *Hasher) ExtHash(ctx context.Context, src LuminanceSource) (*ExtHash, error) {
	coeffs, err := h.coefficients(ctx, src, h.hashSize)
	if err != nil {
		return nil, err
	}
	e := newExtHash(h.hashSize)
	for i, above := range threshold(coeffs) {
		if above {
			e.bits.Set(i)
		}
	}
	return e, nil
}

// coefficients returns the n x n DCT block starting at (1, 1), row-major.
// The filtered grid is stretched onto [0, 255] before resampling, so the
// result does not depend on the input's offset or positive scale.
func (h *Hasher) coefficients(ctx context.Context, src LuminanceSource, n int) ([]float64, error) {
	if src.Width() <= 0 || src.Height() <= 0 {
		return nil, ErrEmptyImage
	}
	filtered, err := h.MeanFilter(ctx, src)
	if err != nil {
		return nil, err
	}
	side := dctScale * n
	resized := luma.Resize(luma.Normalize(filtered, 0, 255), side, side, h.interp)
	d, err := dct.Transform2D(resized)
	if err != nil {
		return nil, err
	}
	coeffs := make([]float64, 0, n*n)
	for u := 1; u <= n; u++ {
		for v := 1; v <= n; v++ {
			coeffs = append(coeffs, d.At(u, v))
		}
	}
	return coeffs, nil
}

// threshold marks each coefficient strictly above the median.
func threshold(coeffs []float64) []bool {
	m := median(coeffs)
	out := make([]bool, len(coeffs))
	for i, c := range coeffs {
		out[i] = c > m
	}
	return out
}

// median returns the middle value, or the mean of the two middle values for
// an even count.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// MeanFilter smooths src with the default 7x7 mean filter. An empty source
// yields an empty grid, and so does a source whose Matrix does not hold
// Width*Height samples; use Hasher.MeanFilter to get the error instead.
func MeanFilter(src LuminanceSource) *luma.Image {
	out, err := defaultHasher.MeanFilter(context.Background(), src)
	if err != nil {
		return luma.New(0, 0)
	}
	return out
}

// ImageHash computes the 64-bit perceptual hash of src with the default
// options.
func ImageHash(src LuminanceSource) (Hash, error) {
	return defaultHasher.Hash(context.Background(), src)
}
