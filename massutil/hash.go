package massutil

import (
	"encoding/hex"
	"errors"

	"massnet.org/shasum/crypto/sha256"
)

// ErrInvalidHashLength indicates the length of hash is invalid.
var ErrInvalidHashLength = errors.New("invalid length for hash")

// Hash represents a 32-byte hash value.
type Hash [sha256.Size]byte

// Bytes converts Hash to Byte Slice.
func (h Hash) Bytes() []byte {
	var bs Hash
	copy(bs[:], h[:])
	return bs[:]
}

// String converts Hash to String.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// DecodeStringToHash decodes a string value to Hash,
// the length of string value must be 64.
func DecodeStringToHash(str string) (Hash, error) {
	if len(str) != sha256.Size*2 {
		return Hash{}, ErrInvalidHashLength
	}
	hBytes, err := hex.DecodeString(str)
	if err != nil {
		return Hash{}, err
	}
	var h = Hash{}
	copy(h[:], hBytes)

	return h, nil
}
