package bench

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	phash "github.com/vmchale/phash-fut"
)

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 5), B: uint8((x ^ y) * 3), A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	a := writeImage(t, dir, "a.png")
	b := writeImage(t, dir, "b.png")

	rep, err := Run(context.Background(), []string{a, b}, Options{Iterations: 2, Reference: true})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rep.RunID)
	assert.Equal(t, 2, rep.Iterations)
	assert.Equal(t, phash.DefaultKernelSize, rep.KernelSize)
	require.Len(t, rep.Results, 2)

	res := rep.Results[0]
	assert.Equal(t, a, res.Path)
	assert.Equal(t, 64, res.Width)
	assert.Equal(t, 48, res.Height)
	assert.True(t, res.ImageHash > 0)
	assert.True(t, res.Reference > 0)

	src, err := phash.Load(a)
	require.NoError(t, err)
	want, err := phash.ImageHash(src)
	require.NoError(t, err)
	assert.Equal(t, want, res.Hash)
	assert.Equal(t, rep.Results[0].Hash, rep.Results[1].Hash)
}

func TestRunDefaults(t *testing.T) {
	path := writeImage(t, t.TempDir(), "a.png")
	hasher, err := phash.NewHasher(&phash.Options{KernelSize: 3})
	require.NoError(t, err)

	rep, err := Run(context.Background(), []string{path}, Options{Hasher: hasher})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Iterations)
	assert.Equal(t, 3, rep.KernelSize)
	assert.Zero(t, rep.Results[0].Reference)
	assert.Zero(t, rep.Results[0].ReferenceHash)
}

func TestRunErrors(t *testing.T) {
	_, err := Run(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, ErrNoImages)

	_, err = Run(context.Background(), []string{filepath.Join(t.TempDir(), "missing.png")}, Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, []string{writeImage(t, t.TempDir(), "a.png")}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func sampleReport() *Report {
	return &Report{
		RunID:      uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Timestamp:  time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		Iterations: 10,
		KernelSize: 7,
		Reference:  true,
		Results: []Result{
			{Path: "frog.jpeg", Width: 1280, Height: 720, Hash: 0xff, MeanFilter: 1234500 * time.Nanosecond, ImageHash: 2 * time.Millisecond, ReferenceHash: 0xf0, Reference: 4 * time.Millisecond},
			{Path: "cat.png", Width: 64, Height: 64, Hash: 1, MeanFilter: time.Millisecond, ImageHash: time.Millisecond, ReferenceHash: 1, Reference: 2 * time.Millisecond},
		},
	}
}

func TestTotals(t *testing.T) {
	tot := sampleReport().Totals()
	assert.Equal(t, 2234500*time.Nanosecond, tot.MeanFilter)
	assert.Equal(t, 3*time.Millisecond, tot.ImageHash)
	assert.Equal(t, 6*time.Millisecond, tot.Reference)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().Write(&buf))
	out := buf.String()

	assert.Contains(t, out, "Run: 6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Contains(t, out, "Timestamp: 2024-03-01 12:30:00")
	assert.Contains(t, out, "1. frog.jpeg (1280x720)")
	assert.Contains(t, out, "mean filter:  1,234.5 µs")
	assert.Contains(t, out, "00000000000000ff")
	assert.Contains(t, out, "(distance 4)")
	assert.Contains(t, out, "Total image hash: 3,000.0 µs")
	assert.Contains(t, out, "Speedup vs goimagehash: 2.00x")
}

func TestWriteWithoutReference(t *testing.T) {
	rep := sampleReport()
	rep.Reference = false
	var buf bytes.Buffer
	require.NoError(t, rep.Write(&buf))
	assert.NotContains(t, buf.String(), "goimagehash")
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	name, err := sampleReport().WriteFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bench_2024-03-01_12-30-00.txt"), name)

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "=== Perceptual Hash Benchmark ==="))
}
