// Package sha256 computes the SHA-256 digest defined in FIPS 180-4.
//
// The whole message is padded in memory and compressed block by block;
// there is no incremental interface.
package sha256

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
)

// ErrInvalidDigestLength indicates a hex digest is not 64 characters long.
var ErrInvalidDigestLength = errors.New("invalid length for digest")

// Sum256 returns the SHA-256 checksum of data.
func Sum256(data []byte) [Size]byte {
	return Compress(_H0, Pad(data)).Sum()
}

// HexDigest returns the SHA-256 checksum of data as 64 lowercase hex digits.
func HexDigest(data []byte) string {
	return Compress(_H0, Pad(data)).String()
}

// Sum serializes the state as 32 bytes, each word big-endian.
func (s State) Sum() [Size]byte {
	var out [Size]byte
	for i, v := range s {
		binary.BigEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// String renders every word as eight zero-padded lowercase hex digits.
func (s State) String() string {
	sum := s.Sum()
	return hex.EncodeToString(sum[:])
}

// ParseState decodes a 64-character hex digest back into its eight words.
func ParseState(str string) (State, error) {
	if len(str) != Size*2 {
		return State{}, ErrInvalidDigestLength
	}
	b, err := hex.DecodeString(str)
	if err != nil {
		return State{}, err
	}
	var s State
	for i := range s {
		s[i] = binary.BigEndian.Uint32(b[i*4:])
	}
	return s, nil
}
