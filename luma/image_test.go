package luma

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
)

func TestNewAndAccessors(t *testing.T) {
	m := New(3, 2)
	assert.Equal(t, 3, m.Width())
	assert.Equal(t, 2, m.Height())
	assert.False(t, m.Empty())

	m.SetValue(2, 1, 42.5)
	assert.Equal(t, float32(42.5), m.Value(2, 1))
	assert.Equal(t, float32(42.5), m.Pix()[5])
}

func TestNewNonPositiveIsEmpty(t *testing.T) {
	assert.True(t, New(0, 5).Empty())
	assert.True(t, New(-1, 5).Empty())
}

func TestFromPixels(t *testing.T) {
	pix := []float32{1, 2, 3, 4, 5, 6}
	m, err := FromPixels(2, 3, pix)
	require.NoError(t, err)
	assert.Equal(t, float32(6), m.Value(1, 2))

	// shares the slice
	pix[0] = 9
	assert.Equal(t, float32(9), m.Value(0, 0))

	_, err = FromPixels(4, 2, pix)
	assert.ErrorIs(t, err, ErrDimensions)
}

func TestFromRows(t *testing.T) {
	m, err := FromRows([][]float32{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Width())
	assert.Equal(t, 2, m.Height())
	assert.Equal(t, []float32{4, 5, 6}, m.Row(1, nil))

	_, err = FromRows([][]float32{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrDimensions)

	empty, err := FromRows(nil)
	require.NoError(t, err)
	assert.True(t, empty.Empty())
}

func TestRowReusesBuffer(t *testing.T) {
	m, err := FromRows([][]float32{{1, 2}, {3, 4}})
	require.NoError(t, err)

	buf := make([]float32, 8)
	row := m.Row(1, buf)
	assert.Equal(t, &buf[0], &row[0])
	assert.Equal(t, float32(3), row[0])
	assert.Nil(t, m.Row(2, nil))
	assert.Nil(t, m.Row(-1, nil))
}

func TestMatrixAndCloneCopy(t *testing.T) {
	m, err := FromRows([][]float32{{1, 2}, {3, 4}})
	require.NoError(t, err)

	mat := m.Matrix()
	mat[0] = 100
	assert.Equal(t, float32(1), m.Value(0, 0))

	c := m.Clone()
	c.SetValue(1, 1, 100)
	assert.Equal(t, float32(4), m.Value(1, 1))
}

func TestRowsShareStorage(t *testing.T) {
	m := New(2, 2)
	rows := m.Rows()
	rows[1][0] = 7
	assert.Equal(t, float32(7), m.Value(0, 1))
}

func TestColorView(t *testing.T) {
	m, err := FromRows([][]float32{{0, 255, 300, -10}})
	require.NoError(t, err)

	assert.Equal(t, color.Gray16Model, m.ColorModel())
	assert.Equal(t, image.Rect(0, 0, 4, 1), m.Bounds())
	assert.Equal(t, color.Gray16{Y: 0}, m.At(0, 0))
	assert.Equal(t, color.Gray16{Y: 0xffff}, m.At(1, 0))
	assert.Equal(t, color.Gray16{Y: 0xffff}, m.At(2, 0), "clamped above")
	assert.Equal(t, color.Gray16{Y: 0}, m.At(3, 0), "clamped below")
	assert.Equal(t, color.Gray16{}, m.At(9, 9))

	m.Set(0, 0, color.Gray{Y: 128})
	assert.InDelta(t, 128, m.Value(0, 0), 0.01)

	m.SetRGBA64(1, 0, color.RGBA64{R: 0x8080, G: 0x8080, B: 0x8080, A: 0xffff})
	assert.InDelta(t, 128, m.Value(1, 0), 0.01)
}

func TestDrawRoundTrip(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 16)
	}
	m := New(4, 4)
	draw.Draw(m, m.Bounds(), src, image.Point{}, draw.Src)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.InDelta(t, float64(src.GrayAt(x, y).Y), float64(m.Value(x, y)), 0.01)
		}
	}
}
