package noise

// Hash32 is a 32-bit integer finalizer (lowbias32). Every seed-derived table
// in the generator is built from its output, never from math/rand, so a seed
// produces the same planet on every platform and Go release.
func Hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// Stream is a Weyl sequence passed through Hash32.
type Stream struct {
	state uint32
}

func NewStream(seed uint32) *Stream {
	return &Stream{state: Hash32(seed)}
}

// Next advances the sequence and returns the mixed value
func (s *Stream) Next() uint32 {
	s.state += 0x9e3779b9
	return Hash32(s.state)
}

// Intn returns a value in [0, n) by plain modulo reduction. n must be
// positive. The bias is below 2^-24 for the n <= 256 the permutation shuffle
// uses, and the reduction is part of the seed-to-planet mapping, so it stays.
func (s *Stream) Intn(n int) int {
	return int(s.Next() % uint32(n))
}
