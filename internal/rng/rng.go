// Package rng provides the seeded random stream that puzzle identity
// depends on. The same calendar key must yield the same puzzle for every
// player, so the generator here is specified down to the bit level and
// must never be swapped for math/rand or any library PRNG.
package rng

// Hash folds a string into a non-negative 32-bit seed.
//
// The algorithm is the classic iterative h = h*31 + ch hash evaluated in
// 32-bit two's-complement arithmetic, with the absolute value taken at the
// end. It is not cryptographic; it only needs to spread calendar keys
// across seeds well enough for sampling.
func Hash(s string) uint32 {
	var h int32
	for _, r := range s {
		h = h<<5 - h + int32(r)
	}
	if h < 0 {
		h = -h
	}
	return uint32(h)
}

// Stream is a mulberry32 generator. Each call advances the 32-bit state by
// a fixed odd constant and applies two multiply/xor-shift mixing rounds.
// Given the same seed the float sequence is identical on every platform.
type Stream struct {
	state uint32
}

// New creates a stream from a numeric seed.
func New(seed uint32) *Stream {
	return &Stream{state: seed}
}

// FromString creates a stream seeded from Hash(s).
func FromString(s string) *Stream {
	return New(Hash(s))
}

// Float64 returns the next value in [0, 1).
func (s *Stream) Float64() float64 {
	s.state += 0x6D2B79F5
	z := s.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	return float64(z^(z>>14)) / 4294967296.0
}

// Intn returns a value in [0, n). n must be positive.
func (s *Stream) Intn(n int) int {
	return int(s.Float64() * float64(n))
}

// Pick returns a random index into a slice of length n, or -1 if n <= 0.
func (s *Stream) Pick(n int) int {
	if n <= 0 {
		return -1
	}
	return s.Intn(n)
}

// Shuffle performs a Fisher-Yates shuffle of n elements using the stream.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.Intn(i + 1)
		swap(i, j)
	}
}
