package game

import "math/rand/v2"

// Rand is the randomness used to pick hint letters.
type Rand interface {
	IntN(n int) int
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int {
	return rand.IntN(n) //nolint:gosec // gameplay randomness
}

var DefaultRand Rand = defaultRand{} //nolint:gochecknoglobals // stateless default
