package world

import "math/rand"

// Knuth's MMIX constants.
const (
	lcgMultiplier = 6364136223846793005
	lcgIncrement  = 1442695040888963407
)

// lcgSource is a 64-bit linear congruential rand.Source.
type lcgSource struct {
	state uint64
}

func newLCG(seed int64) *rand.Rand {
	src := &lcgSource{}
	src.Seed(seed)
	return rand.New(src)
}

// Seed resets the generator state.
func (s *lcgSource) Seed(seed int64) {
	s.state = uint64(seed)
	s.Uint64()
}

// Uint64 advances the state and returns it.
func (s *lcgSource) Uint64() uint64 {
	s.state = s.state*lcgMultiplier + lcgIncrement
	return s.state
}

// Int63 returns the high 63 bits of the next state.
func (s *lcgSource) Int63() int64 {
	return int64(s.Uint64() >> 1)
}
