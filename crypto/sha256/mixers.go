package sha256

import "math/bits"

func rotr(x uint32, n int) uint32 {
	return bits.RotateLeft32(x, -n)
}

// Sigma0 is the small sigma applied to w[i-15] in the message schedule.
func Sigma0(x uint32) uint32 {
	return rotr(x, 7) ^ rotr(x, 18) ^ (x >> 3)
}

// Sigma1 is the small sigma applied to w[i-2] in the message schedule.
func Sigma1(x uint32) uint32 {
	return rotr(x, 17) ^ rotr(x, 19) ^ (x >> 10)
}

// BigSigma0 mixes register a in every round.
func BigSigma0(x uint32) uint32 {
	return rotr(x, 2) ^ rotr(x, 13) ^ rotr(x, 22)
}

// BigSigma1 mixes register e in every round.
func BigSigma1(x uint32) uint32 {
	return rotr(x, 6) ^ rotr(x, 11) ^ rotr(x, 25)
}

// Choice picks each bit from f where e is set and from g where it is not.
func Choice(e, f, g uint32) uint32 {
	return (e & f) ^ (^e & g)
}

// Majority returns, bit by bit, the value held by at least two of a, b and c.
func Majority(a, b, c uint32) uint32 {
	return (a & b) ^ (a & c) ^ (b & c)
}
