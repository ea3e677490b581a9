// SHA256 block step.
// Schedule expansion, the round function and block chaining are kept
// apart so that every stage can be checked against known intermediate values.

package sha256

import "encoding/binary"

// State holds the eight 32-bit registers a through h. It is used both for the
// working variables of one block and for the running hash value.
type State [8]uint32

// Schedule is the message schedule of one block.
type Schedule [Rounds]uint32

// NewSchedule expands a 64-byte block into 64 schedule words.
func NewSchedule(block []byte) Schedule {
	var w Schedule
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(block[i*4:])
	}
	for i := 16; i < Rounds; i++ {
		w[i] = Sigma1(w[i-2]) + w[i-7] + Sigma0(w[i-15]) + w[i-16]
	}
	return w
}

// Round applies one compression round using schedule word w and round
// constant k.
func Round(s State, w, k uint32) State {
	a, b, c, d, e, f, g, h := s[0], s[1], s[2], s[3], s[4], s[5], s[6], s[7]

	t1 := h + BigSigma1(e) + Choice(e, f, g) + k + w
	t2 := BigSigma0(a) + Majority(a, b, c)

	return State{t1 + t2, a, b, c, d + t1, e, f, g}
}

// compressBlock runs all rounds over one block and returns the working
// variables after the last round. h is passed by value, so the caller's
// hash value is not touched.
func compressBlock(h State, block []byte) State {
	w := NewSchedule(block)
	for i := 0; i < Rounds; i++ {
		h = Round(h, w[i], _K[i])
	}
	return h
}

// Compress chains every block of a padded message into the hash value h and
// returns the result. Blocks are processed strictly in order.
func Compress(h State, padded []byte) State {
	for i, n := 0, len(padded)/BlockSize; i < n; i++ {
		working := compressBlock(h, Block(padded, i))
		for j := range h {
			h[j] += working[j]
		}
	}
	return h
}
