package phash

import "errors"

var (
	// ErrEmptyImage is returned when an image has no pixels.
	ErrEmptyImage = errors.New("phash: empty image")

	// ErrKernelSize is returned when the mean filter size is even or not positive.
	ErrKernelSize = errors.New("phash: kernel size must be odd and positive")

	// ErrHashSize is returned for unsupported hash sizes or when comparing
	// hashes of different sizes.
	ErrHashSize = errors.New("phash: invalid hash size")
)
