package phash

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/vmchale/phash-fut/bitutil"
)

// Hash is a 64-bit perceptual hash. Bit i is set when the i-th coefficient of
// the 8x8 low-frequency DCT block (row-major) exceeds the block median.
type Hash uint64

// Distance returns the number of differing bits between two hashes.
func (h Hash) Distance(other Hash) int {
	return bits.OnesCount64(uint64(h ^ other))
}

// Similar reports whether other is within threshold bits of h.
func (h Hash) Similar(other Hash, threshold int) bool {
	return h.Distance(other) <= threshold
}

// String returns the hash as 16 lowercase hex digits.
func (h Hash) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}

// ParseHash parses the 16 hex digits produced by Hash.String.
func ParseHash(s string) (Hash, error) {
	if len(s) != 16 {
		return 0, fmt.Errorf("phash: invalid hash %q: want 16 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("phash: invalid hash %q: %w", s, err)
	}
	return Hash(v), nil
}

// ExtHash is a perceptual hash of n*n bits built from an n x n low-frequency
// DCT block.
type ExtHash struct {
	bits *bitutil.BitArray
	n    int
}

func newExtHash(n int) *ExtHash {
	return &ExtHash{bits: bitutil.NewBitArray(n * n), n: n}
}

// Size returns the side of the coefficient block; the hash has Size()^2 bits.
func (e *ExtHash) Size() int { return e.n }

// Bits returns a copy of the underlying bit vector.
func (e *ExtHash) Bits() *bitutil.BitArray { return e.bits.Clone() }

// Distance returns the number of differing bits, or ErrHashSize when the two
// hashes have different sizes.
func (e *ExtHash) Distance(other *ExtHash) (int, error) {
	if e.bits.Size() != other.bits.Size() {
		return 0, ErrHashSize
	}
	x := e.bits.Clone()
	x.Xor(other.bits)
	return x.OnesCount(), nil
}

// Hash64 returns the hash truncated to its first 64 bits. For Size() == 8 it
// equals the Hash computed with the same options.
func (e *ExtHash) Hash64() Hash {
	return Hash(e.bits.Uint64())
}

// Equal reports whether both hashes have the same size and bits.
func (e *ExtHash) Equal(other *ExtHash) bool {
	return e.n == other.n && e.bits.Equal(other.bits)
}

// String returns the hash as hex, reading bit i as the coefficient of 2^i.
// It has (Size()^2+3)/4 digits; for Size() == 8 it matches Hash.String.
func (e *ExtHash) String() string {
	words := e.bits.Words()
	var sb strings.Builder
	for i := len(words) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%016x", words[i])
	}
	s := sb.String()
	return s[len(s)-hexDigits(e.n):]
}

func hexDigits(n int) int { return (n*n + 3) / 4 }

// ParseExtHash parses the hex form produced by ExtHash.String for a hash of
// side n.
func ParseExtHash(s string, n int) (*ExtHash, error) {
	if n < 2 {
		return nil, ErrHashSize
	}
	if len(s) != hexDigits(n) {
		return nil, fmt.Errorf("phash: hash %q has %d digits for size %d: %w", s, len(s), n, ErrHashSize)
	}
	words := make([]uint64, (n*n+63)/64)
	for i := range words {
		hi := len(s) - 16*i
		lo := max(hi-16, 0)
		w, err := strconv.ParseUint(s[lo:hi], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("phash: invalid hash %q: %w", s, err)
		}
		words[i] = w
	}
	ba, ok := bitutil.NewBitArrayFromWords(words, n*n)
	if !ok {
		return nil, fmt.Errorf("phash: hash %q overflows size %d: %w", s, n, ErrHashSize)
	}
	return &ExtHash{bits: ba, n: n}, nil
}
