package phash_test

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	phash "github.com/vmchale/phash-fut"
)

func colorImage(w, h int) *image.NRGBA {
	m := blockImage(w, h, 16, 99)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(m.Value(x, y))
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v / 2, B: 255 - v, A: 255})
		}
	}
	return img
}

func hashFile(t *testing.T, path string) phash.Hash {
	t.Helper()
	m, err := phash.Load(path)
	require.NoError(t, err)
	h, err := phash.ImageHash(m)
	require.NoError(t, err)
	return h
}

func TestPNGAndJPEGAgree(t *testing.T) {
	dir := t.TempDir()
	img := colorImage(200, 150)

	pngPath := writePNG(t, dir, "a.png", img)

	jpgPath := filepath.Join(dir, "a.jpg")
	f, err := os.Create(jpgPath)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 85}))
	require.NoError(t, f.Close())

	hp := hashFile(t, pngPath)
	hj := hashFile(t, jpgPath)
	assert.LessOrEqual(t, hp.Distance(hj), 8, "png %s jpeg %s", hp, hj)
}

func TestLoadedHashMatchesInMemory(t *testing.T) {
	img := colorImage(96, 64)
	path := writePNG(t, t.TempDir(), "b.png", img)

	want, err := phash.ImageHash(phash.FromImage(img))
	require.NoError(t, err)
	assert.Equal(t, want, hashFile(t, path))
}
