package massutil

import (
	"massnet.org/shasum/crypto/sha256"
)

// SHA256 returns sha256(data) as a Hash.
func SHA256(data []byte) Hash {
	return sha256.Sum256(data)
}
