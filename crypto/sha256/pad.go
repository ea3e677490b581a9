package sha256

import (
	"encoding/binary"
	"fmt"
)

// Pad returns msg followed by a single 0x80 byte, the fewest zero bytes that
// bring the length to 56 mod 64, and the bit length of msg as a big-endian
// uint64. The result is a new buffer; msg is left untouched.
//
// Bit lengths that do not fit in 64 bits are not supported.
func Pad(msg []byte) []byte {
	bitLen := uint64(len(msg)) << 3

	n := len(msg) + 1 + 8
	if rem := n % BlockSize; rem != 0 {
		n += BlockSize - rem
	}

	p := make([]byte, n)
	copy(p, msg)
	p[len(msg)] = 0x80
	binary.BigEndian.PutUint64(p[n-8:], bitLen)
	return p
}

// Block returns the i-th 64-byte block of a padded message. The returned
// slice shares memory with padded.
//
// Block panics if i is not a valid block index; callers iterate over
// len(padded)/BlockSize blocks and never ask for more.
func Block(padded []byte, i int) []byte {
	if i < 0 || i >= len(padded)/BlockSize {
		panic(fmt.Sprintf("sha256: block index %d out of range [0, %d)", i, len(padded)/BlockSize))
	}
	start := i * BlockSize
	return padded[start : start+BlockSize : start+BlockSize]
}
