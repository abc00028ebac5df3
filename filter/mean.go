// Package filter provides smoothing filters over luminance grids.
package filter

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/vmchale/phash-fut/luma"
)

// DefaultSize is the mean filter kernel size used by the perceptual hash.
const DefaultSize = 7

// ErrKernelSize is returned for even or non-positive kernel sizes.
var ErrKernelSize = errors.New("filter: kernel size must be odd and positive")

// Mean returns src smoothed by a size x size box average. Samples outside the
// image take the value of the nearest edge sample.
func Mean(src *luma.Image, size int) (*luma.Image, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	w, h := src.Width(), src.Height()
	if src.Empty() {
		return luma.New(0, 0), nil
	}
	tmp := luma.New(w, h)
	dst := luma.New(w, h)
	horizontalPass(src.Pix(), tmp.Pix(), w, size, 0, h)
	verticalPass(tmp.Pix(), dst.Pix(), w, h, size, 0, w)
	return dst, nil
}

// MeanParallel computes the same result as Mean, splitting the work into
// bands handled by up to workers goroutines.
func MeanParallel(ctx context.Context, src *luma.Image, size, workers int) (*luma.Image, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if workers <= 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return Mean(src, size)
	}
	w, h := src.Width(), src.Height()
	if src.Empty() {
		return luma.New(0, 0), nil
	}
	tmp := luma.New(w, h)
	dst := luma.New(w, h)

	// Rows for the horizontal pass, then columns for the vertical pass. Each
	// band writes a disjoint set of samples.
	if err := runBands(ctx, h, workers, func(lo, hi int) {
		horizontalPass(src.Pix(), tmp.Pix(), w, size, lo, hi)
	}); err != nil {
		return nil, err
	}
	if err := runBands(ctx, w, workers, func(lo, hi int) {
		verticalPass(tmp.Pix(), dst.Pix(), w, h, size, lo, hi)
	}); err != nil {
		return nil, err
	}
	return dst, nil
}

func checkSize(size int) error {
	if size < 1 || size%2 == 0 {
		return ErrKernelSize
	}
	return nil
}

func runBands(ctx context.Context, n, workers int, fn func(lo, hi int)) error {
	if workers > n {
		workers = n
	}
	band := (n + workers - 1) / workers
	g, ctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += band {
		lo, hi := lo, min(lo+band, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(lo, hi)
			return nil
		})
	}
	return g.Wait()
}

// horizontalPass averages rows [y0, y1) along x with a sliding window.
func horizontalPass(src, dst []float32, w, size, y0, y1 int) {
	r := size / 2
	norm := 1 / float64(size)
	for y := y0; y < y1; y++ {
		row := src[y*w : (y+1)*w]
		out := dst[y*w : (y+1)*w]
		sum := 0.0
		for d := -r; d <= r; d++ {
			sum += float64(row[clamp(d, w)])
		}
		for x := 0; x < w; x++ {
			out[x] = float32(sum * norm)
			sum += float64(row[clamp(x+r+1, w)]) - float64(row[clamp(x-r, w)])
		}
	}
}

// verticalPass averages columns [x0, x1) along y with a sliding window.
func verticalPass(src, dst []float32, w, h, size, x0, x1 int) {
	r := size / 2
	norm := 1 / float64(size)
	for x := x0; x < x1; x++ {
		sum := 0.0
		for d := -r; d <= r; d++ {
			sum += float64(src[clamp(d, h)*w+x])
		}
		for y := 0; y < h; y++ {
			dst[y*w+x] = float32(sum * norm)
			sum += float64(src[clamp(y+r+1, h)*w+x]) - float64(src[clamp(y-r, h)*w+x])
		}
	}
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
