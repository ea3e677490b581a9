package sha256_test

import (
	"bytes"
	gosha256 "crypto/sha256"
	"encoding/hex"
	"errors"
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"massnet.org/shasum/crypto/sha256"
	"massnet.org/shasum/testutil"
)

type sha256Test struct {
	out string
	in  []byte
}

var golden = []sha256Test{
	{"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", []byte("")},
	{"8f434346648f6b96df89dda901c5176b10a6d83961dd3c1ac88b59b2dc327aa4", []byte("hi")},
	{"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", []byte("abc")},
	{"a948904f2f0f479b8f8197694b30184b0d2ed1c1cd2a1ec0fb85d299a192a447", []byte("hello world\n")},
	{"248d6a61d20638b8e5c026930c3e6039a33ce45964ff2167f6ecedd419db06c1", []byte("abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq")},
	{"9f4390f8d30c2dd92ec9f095b65e2b9ae9b0a925a5258e241c9f1e910f734318", bytes.Repeat([]byte("a"), 55)},
	{"b35439a4ac6f0948b6d6f9e3c6af0f5f590ce20f1bde7090ef7970686ec6738a", bytes.Repeat([]byte("a"), 56)},
	{"ffe054fe7ae0cb6dc65c3af9b61d5209f439851db43d0ba5997337df154668eb", bytes.Repeat([]byte("a"), 64)},
	{"3e24531cdaa595ab56f976b96c1a1df8009eabec300a5a0261c0e44f47a43b89", bytes.Repeat([]byte("a"), 107)},
	{"6374f73208854473827f6f6a3f43b1f53eaa3b82c21c1a6d69a2110b2a79baad", bytes.Repeat([]byte("a"), 111)},
}

func TestGolden(t *testing.T) {
	for i, g := range golden {
		if s := sha256.HexDigest(g.in); s != g.out {
			t.Errorf("%d, HexDigest(%q) = %s, want %s", i, g.in, s, g.out)
		}
		sum := sha256.Sum256(g.in)
		if s := hex.EncodeToString(sum[:]); s != g.out {
			t.Errorf("%d, Sum256(%q) = %s, want %s", i, g.in, s, g.out)
		}
	}
}

func TestMatchesStandardLibrary(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	buf := make([]byte, 4*sha256.BlockSize+7)
	r.Read(buf)

	for n := 0; n <= len(buf); n++ {
		if got, want := sha256.Sum256(buf[:n]), gosha256.Sum256(buf[:n]); got != want {
			t.Fatalf("length %d: got %x, want %x", n, got, want)
		}
	}
}

func TestDeterministic(t *testing.T) {
	msg := []byte("The tunneling gopher digs downwards, unaware of what he will find.")
	first := sha256.HexDigest(msg)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, sha256.HexDigest(msg))
	}
}

func TestHexDigestFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{64}$`)
	r := rand.New(rand.NewSource(2))

	for i := 0; i < 200; i++ {
		msg := make([]byte, r.Intn(300))
		r.Read(msg)
		if s := sha256.HexDigest(msg); !pattern.MatchString(s) {
			t.Fatalf("digest %q does not match %s", s, pattern)
		}
	}
}

func TestAvalanche(t *testing.T) {
	inputs := [][]byte{
		[]byte("hi"),
		bytes.Repeat([]byte("a"), 55),
		bytes.Repeat([]byte("a"), 107),
	}

	for _, in := range inputs {
		base := sha256.Sum256(in)
		msg := append([]byte(nil), in...)
		for i := range msg {
			for bit := uint(0); bit < 8; bit++ {
				msg[i] ^= 1 << bit
				flipped := sha256.Sum256(msg)
				msg[i] ^= 1 << bit

				if flipped == base {
					t.Fatalf("len %d: flipping bit %d of byte %d left the digest unchanged", len(in), bit, i)
				}
				if diff := bitsDiffer(base, flipped); diff < 32 {
					t.Errorf("len %d: flipping bit %d of byte %d changed only %d output bits", len(in), bit, i, diff)
				}
			}
		}
	}
}

func bitsDiffer(a, b [sha256.Size]byte) int {
	var n int
	for i := range a {
		for x := a[i] ^ b[i]; x != 0; x &= x - 1 {
			n++
		}
	}
	return n
}

func TestParseStateRoundTrip(t *testing.T) {
	states := []sha256.State{
		sha256.InitialState(),
		{0x8f434346, 0x648f6b96, 0xdf89dda9, 0x01c5176b, 0x10a6d839, 0x61dd3c1a, 0xc88b59b2, 0xdc327aa4},
		{0, 1, 0xf, 0x10, 0xff, 0x100, 0xffffffff, 0x0000abcd},
	}

	for _, s := range states {
		str := s.String()
		assert.Len(t, str, 64)

		parsed, err := sha256.ParseState(str)
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
}

func TestParseState(t *testing.T) {
	tests := []*struct {
		str string
		err error
	}{
		{
			str: "0123456789",
			err: sha256.ErrInvalidDigestLength,
		},
		{
			str: "01234567890123456789012345678901234567890123456789012345678901234",
			err: sha256.ErrInvalidDigestLength,
		},
		{
			str: "0123456789012345678901234567890123456789012345678901234567890123",
			err: nil,
		},
		{
			str: "g123456789012345678901234567890123456789012345678901234567890123",
			err: errors.New("encoding/hex: invalid byte: U+0067 'g'"),
		},
	}

	for i, test := range tests {
		if _, err := sha256.ParseState(test.str); !testutil.SameErrorString(err, test.err) {
			t.Errorf("%d, ParseState error not match, got = %v, want = %v", i, err, test.err)
		}
	}
}

var bench = make([]byte, 8192)

func benchmarkSize(b *testing.B, size int) {
	b.SetBytes(int64(size))
	for i := 0; i < b.N; i++ {
		sha256.Sum256(bench[:size])
	}
}

func BenchmarkHash8Bytes(b *testing.B) {
	benchmarkSize(b, 8)
}

func BenchmarkHash1K(b *testing.B) {
	benchmarkSize(b, 1024)
}

func BenchmarkHash8K(b *testing.B) {
	benchmarkSize(b, 8192)
}
