package simulation

import "math/rand"

// TrialSeed derives the seed of trial index from a play seed with a
// splitmix64 step, so per-trial streams do not depend on scheduling.
func TrialSeed(seed int64, index int) int64 {
	z := uint64(seed) + uint64(index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

// NewTrialRand returns the generator for trial index in split-stream mode.
func NewTrialRand(seed int64, index int) *rand.Rand {
	return rand.New(rand.NewSource(TrialSeed(seed, index))) //nolint:gosec // simulation rolls, not security
}
