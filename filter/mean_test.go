package filter

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmchale/phash-fut/luma"
)

// naiveMean is a direct 2D evaluation of the clamped box average.
func naiveMean(src *luma.Image, size int) *luma.Image {
	w, h := src.Width(), src.Height()
	r := size / 2
	dst := luma.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0.0
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					sum += float64(src.Value(clamp(x+dx, w), clamp(y+dy, h)))
				}
			}
			dst.SetValue(x, y, float32(sum/float64(size*size)))
		}
	}
	return dst
}

func randomImage(w, h int, seed int64) *luma.Image {
	rng := rand.New(rand.NewSource(seed))
	m := luma.New(w, h)
	for i := range m.Pix() {
		m.Pix()[i] = rng.Float32() * 255
	}
	return m
}

func TestMeanSingleSpike(t *testing.T) {
	src, err := luma.FromRows([][]float32{
		{0, 0, 0},
		{0, 9, 0},
		{0, 0, 0},
	})
	require.NoError(t, err)

	dst, err := Mean(src, 3)
	require.NoError(t, err)
	// every clamped 3x3 window sees the spike exactly once
	for _, v := range dst.Pix() {
		assert.InDelta(t, 1, v, 1e-6)
	}
}

func TestMeanMatchesNaive(t *testing.T) {
	cases := []struct {
		w, h, size int
	}{
		{1, 1, 7},
		{5, 3, 3},
		{17, 11, 7},
		{40, 25, 9},
		{3, 30, 21},
	}
	for _, tc := range cases {
		src := randomImage(tc.w, tc.h, int64(tc.w*tc.h))
		got, err := Mean(src, tc.size)
		require.NoError(t, err)
		want := naiveMean(src, tc.size)
		for i := range want.Pix() {
			assert.InDelta(t, want.Pix()[i], got.Pix()[i], 1e-3, "%dx%d k=%d index %d", tc.w, tc.h, tc.size, i)
		}
	}
}

func TestMeanIdentity(t *testing.T) {
	src := randomImage(9, 9, 1)
	dst, err := Mean(src, 1)
	require.NoError(t, err)
	for i := range src.Pix() {
		assert.InDelta(t, src.Pix()[i], dst.Pix()[i], 1e-5)
	}
}

func TestMeanConstant(t *testing.T) {
	src := luma.New(12, 8)
	for i := range src.Pix() {
		src.Pix()[i] = 77
	}
	dst, err := Mean(src, DefaultSize)
	require.NoError(t, err)
	for _, v := range dst.Pix() {
		assert.InDelta(t, 77, v, 1e-4)
	}
}

func TestMeanDoesNotMutateSource(t *testing.T) {
	src := randomImage(10, 10, 2)
	before := src.Matrix()
	_, err := Mean(src, 5)
	require.NoError(t, err)
	assert.Equal(t, before, src.Matrix())
}

func TestMeanKernelSize(t *testing.T) {
	src := randomImage(4, 4, 3)
	for _, size := range []int{0, -3, 2, 8} {
		_, err := Mean(src, size)
		assert.ErrorIs(t, err, ErrKernelSize, "size %d", size)
		_, err = MeanParallel(context.Background(), src, size, 4)
		assert.ErrorIs(t, err, ErrKernelSize, "size %d", size)
	}
}

func TestMeanEmpty(t *testing.T) {
	dst, err := Mean(luma.New(0, 0), 7)
	require.NoError(t, err)
	assert.True(t, dst.Empty())
}

func TestMeanParallelMatchesSequential(t *testing.T) {
	src := randomImage(131, 77, 4)
	want, err := Mean(src, 7)
	require.NoError(t, err)
	for _, workers := range []int{0, 1, 2, 3, 8, 500} {
		got, err := MeanParallel(context.Background(), src, 7, workers)
		require.NoError(t, err)
		assert.Equal(t, want.Pix(), got.Pix(), "workers=%d", workers)
	}
}

func TestMeanParallelCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := MeanParallel(ctx, randomImage(16, 16, 5), 3, 4)
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkMean(b *testing.B) {
	src := randomImage(1024, 768, 6)
	b.Run("sequential", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := Mean(src, DefaultSize); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("parallel", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := MeanParallel(context.Background(), src, DefaultSize, 4); err != nil {
				b.Fatal(err)
			}
		}
	})
}
