// Package seed derives deterministic RNG streams from a root seed string.
// Each consumer labels its stream so adding a new consumer never shifts the
// draws of an existing one.
package seed

import (
	"hash/fnv"
	"math/rand"
)

// DefaultRoot seeds sessions that do not specify their own root.
const DefaultRoot = "emberveil"

// Value folds the root seed and label into a non-zero int64.
func Value(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// Rand returns a rand.Rand seeded from the root seed and label.
func Rand(rootSeed, label string) *rand.Rand {
	return rand.New(rand.NewSource(Value(rootSeed, label)))
}

// Float64 draws from rng, falling back to a deterministic default stream
// when rng is nil so a miswired caller still behaves reproducibly.
func Float64(rng *rand.Rand) float64 {
	if rng == nil {
		return Rand(DefaultRoot, "fallback").Float64()
	}
	return rng.Float64()
}
