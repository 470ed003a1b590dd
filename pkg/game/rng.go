package game

import "bomberwire/pkg/protocol"

// lcgModulus and lcgMultiplier match minstd_rand: x_{n+1} = 48271*x_n mod
// (2^31 - 1). math/rand does not guarantee this exact stream across Go
// versions, so the generator is hand-rolled to keep cross-server
// determinism an observable, protocol-level guarantee.
const (
	lcgModulus    = 2147483647 // 2^31 - 1
	lcgMultiplier = 48271
)

// RNG is a minstd_rand-equivalent linear congruential generator. The zero
// value behaves exactly like NewRNG(0).
type RNG struct {
	state uint64
}

// NewRNG seeds the generator. A seed of 0 is valid and is the spec's
// documented starting point for deterministic-spawn tests.
func NewRNG(seed uint32) *RNG {
	return &RNG{state: uint64(seed)}
}

// Next draws the next value in the stream.
func (g *RNG) Next() uint32 {
	g.state = (g.state * lcgMultiplier) % lcgModulus
	return uint32(g.state)
}

// RandomPosition draws two successive values and reduces them modulo the
// board dimensions, per get_random_position.
func (g *RNG) RandomPosition(sizeX, sizeY uint16) protocol.Position {
	x := uint16(g.Next() % uint32(sizeX))
	y := uint16(g.Next() % uint32(sizeY))
	return protocol.Position{X: x, Y: y}
}
