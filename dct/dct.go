// Package dct computes two-dimensional type-II discrete cosine transforms of
// square luminance grids.
package dct

import (
	"errors"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/vmchale/phash-fut/luma"
)

// ErrNotSquare is returned when the input grid is not square.
var ErrNotSquare = errors.New("dct: image must be square")

var (
	mu       sync.Mutex
	matrices = map[int]*mat.Dense{}
)

// Matrix returns the orthonormal n x n DCT-II matrix. Row i holds the i-th
// cosine basis vector. The result is shared and must not be modified.
func Matrix(n int) *mat.Dense {
	mu.Lock()
	defer mu.Unlock()
	if m, ok := matrices[n]; ok {
		return m
	}
	data := make([]float64, n*n)
	c0 := 1 / math.Sqrt(float64(n))
	c1 := math.Sqrt(2 / float64(n))
	for j := 0; j < n; j++ {
		data[j] = c0
	}
	for i := 1; i < n; i++ {
		for j := 0; j < n; j++ {
			data[i*n+j] = c1 * math.Cos(math.Pi/(2*float64(n))*float64(i)*float64(2*j+1))
		}
	}
	m := mat.NewDense(n, n, data)
	matrices[n] = m
	return m
}

// Transform2D returns C·A·Cᵀ where A is src (rows are y) and C is the DCT-II
// matrix of matching size. Element (u, v) of the result is the coefficient
// for vertical frequency u and horizontal frequency v.
func Transform2D(src *luma.Image) (*mat.Dense, error) {
	n := src.Width()
	if n == 0 || n != src.Height() {
		return nil, ErrNotSquare
	}
	data := make([]float64, n*n)
	for i, v := range src.Pix() {
		data[i] = float64(v)
	}
	a := mat.NewDense(n, n, data)
	c := Matrix(n)

	var tmp, out mat.Dense
	tmp.Mul(c, a)
	out.Mul(&tmp, c.T())
	return &out, nil
}
