// Package bitutil provides the packed bit vector backing extended hashes.
package bitutil

import "math/bits"

// BitArray is a fixed-size array of bits represented compactly by an array
// of uint64 words. Bit i lives in word i/64 at weight 1<<(i%64).
type BitArray struct {
	bits []uint64
	size int
}

// NewBitArray creates a new BitArray with the given size.
func NewBitArray(size int) *BitArray {
	if size <= 0 {
		return &BitArray{}
	}
	return &BitArray{
		bits: makeArray(size),
		size: size,
	}
}

// NewBitArrayFromWords builds a BitArray of size bits from little-endian
// words: bit i is word i/64 at weight 1<<(i%64). It reports false when the
// word count is wrong or a bit at or beyond size is set.
func NewBitArrayFromWords(words []uint64, size int) (*BitArray, bool) {
	ba := NewBitArray(size)
	if len(words) != len(ba.bits) {
		return nil, false
	}
	copy(ba.bits, words)
	if r := size & 0x3F; r != 0 && ba.bits[len(ba.bits)-1]>>uint(r) != 0 {
		return nil, false
	}
	return ba, true
}

// Size returns the number of bits in the array.
func (ba *BitArray) Size() int {
	return ba.size
}

// Get returns true if bit i is set.
func (ba *BitArray) Get(i int) bool {
	return (ba.bits[i/64] & (1 << uint(i&0x3F))) != 0
}

// Set sets bit i.
func (ba *BitArray) Set(i int) {
	ba.bits[i/64] |= 1 << uint(i&0x3F)
}

// Xor performs XOR with another BitArray.
func (ba *BitArray) Xor(other *BitArray) {
	if ba.size != other.size {
		panic("bitarray: sizes don't match")
	}
	for i := range ba.bits {
		ba.bits[i] ^= other.bits[i]
	}
}

// OnesCount returns the number of set bits.
func (ba *BitArray) OnesCount() int {
	n := 0
	for _, w := range ba.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// Equal reports whether both arrays have the same size and bits.
func (ba *BitArray) Equal(other *BitArray) bool {
	if ba.size != other.size {
		return false
	}
	for i := range ba.bits {
		if ba.bits[i] != other.bits[i] {
			return false
		}
	}
	return true
}

// Uint64 returns the first word, i.e. bits 0..63.
func (ba *BitArray) Uint64() uint64 {
	if len(ba.bits) == 0 {
		return 0
	}
	return ba.bits[0]
}

// Words returns a copy of the backing words, least significant bits first.
func (ba *BitArray) Words() []uint64 {
	out := make([]uint64, len(ba.bits))
	copy(out, ba.bits)
	return out
}

// Clone returns a copy of this BitArray.
func (ba *BitArray) Clone() *BitArray {
	b := make([]uint64, len(ba.bits))
	copy(b, ba.bits)
	return &BitArray{bits: b, size: ba.size}
}

func makeArray(size int) []uint64 {
	return make([]uint64, (size+63)/64)
}
