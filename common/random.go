package common

import "math/rand/v2"

// Random yields uniformly distributed values in [0, 1).
type Random func() float32

// DefaultRandom draws from the process-wide generator.
var DefaultRandom Random = rand.Float32

// NewRandom returns a deterministic source seeded with seed.
//
// Parameters:
//   - seed: the PCG seed
//
// Returns:
//   - Random: a source that is not safe for concurrent use
func NewRandom(seed uint64) Random {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return r.Float32
}
