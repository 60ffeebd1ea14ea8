// Package seeded provides a deterministic pseudo-random stream derived
// from a string seed.
//
// The seed string is hashed with SHA-256 and the digest keys a ChaCha8
// generator, so the same seed yields the same draw sequence on every
// platform and every Go release. Contest and room problem selection
// depends on this for reproducible replay of a session's problem set.
package seeded

import (
	"crypto/sha256"
	"math/rand/v2"
)

// RNG is a deterministic random stream for one seed string.
type RNG struct {
	r *rand.Rand
}

// New creates a generator for the given seed string.
func New(seed string) *RNG {
	sum := sha256.Sum256([]byte(seed))
	return &RNG{r: rand.New(rand.NewChaCha8(sum))}
}

// IntN returns a uniform draw in [0, n). Panics if n <= 0.
func (g *RNG) IntN(n int) int {
	return g.r.IntN(n)
}

// Shuffle returns a shuffled copy of items (Fisher-Yates). The input
// slice is not modified.
func Shuffle[T any](g *RNG, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	g.r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
