// Package random provides deterministic random number engines and the
// distributions drawn from them.
//
// Engines are xoroshiro generators seeded through splitmix64. Every engine
// implements math/rand/v2.Source, so it can drive rand.New and the gonum
// distuv distributions directly.
package random

import (
	"math/bits"
	"math/rand/v2"
)

// Engine is a seedable 64-bit source.
type Engine interface {
	rand.Source
	// Seed resets the state as if the engine was created with seed.
	Seed(seed uint64)
	// Discard advances the state by n outputs.
	Discard(n uint64)
}

// SplitMix64 is the generator used to expand a 64-bit seed into xoroshiro
// state.
type SplitMix64 struct {
	x uint64
}

// NewSplitMix64 creates a generator with the given state.
func NewSplitMix64(seed uint64) *SplitMix64 { return &SplitMix64{x: seed} }

// Uint64 returns the next output.
func (s *SplitMix64) Uint64() uint64 {
	s.x += 0x9e3779b97f4a7c15
	z := s.x
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// state64 holds the two 32-bit words of a 64-bit-state xoroshiro.
type state64 [2]uint32

func (s *state64) seed(seed uint64) {
	g := SplitMix64{x: seed}
	s[0] = uint32(g.Uint64())
	s[1] = uint32(g.Uint64())
}

// next advances with rotations a=26, b=9, c=13.
func (s *state64) next() {
	s0, s1 := s[0], s[1]
	s1 ^= s0
	s[0] = bits.RotateLeft32(s0, 26) ^ s1 ^ (s1 << 9)
	s[1] = bits.RotateLeft32(s1, 13)
}

// state128 holds the two 64-bit words of a 128-bit-state xoroshiro.
type state128 [2]uint64

func (s *state128) seed(seed uint64) {
	g := SplitMix64{x: seed}
	s[0] = g.Uint64()
	s[1] = g.Uint64()
}

// next advances with rotations a=24, b=16, c=37.
func (s *state128) next() {
	s0, s1 := s[0], s[1]
	s1 ^= s0
	s[0] = bits.RotateLeft64(s0, 24) ^ s1 ^ (s1 << 16)
	s[1] = bits.RotateLeft64(s1, 37)
}

// Xoroshiro64Star is xoroshiro64* with 32-bit outputs.
type Xoroshiro64Star struct{ s state64 }

// NewXoroshiro64Star creates a seeded engine.
func NewXoroshiro64Star(seed uint64) *Xoroshiro64Star {
	e := &Xoroshiro64Star{}
	e.Seed(seed)
	return e
}

func (e *Xoroshiro64Star) Seed(seed uint64) { e.s.seed(seed) }

// Uint32 returns the next 32-bit output.
func (e *Xoroshiro64Star) Uint32() uint32 {
	r := e.s[0] * 0x9e3779bb
	e.s.next()
	return r
}

// Uint64 joins two 32-bit outputs, the first in the high word.
func (e *Xoroshiro64Star) Uint64() uint64 {
	hi := uint64(e.Uint32())
	return hi<<32 | uint64(e.Uint32())
}

// Discard skips n 32-bit outputs.
func (e *Xoroshiro64Star) Discard(n uint64) {
	for ; n > 0; n-- {
		e.s.next()
	}
}

// Xoroshiro64StarStar is xoroshiro64** with 32-bit outputs.
type Xoroshiro64StarStar struct{ s state64 }

// NewXoroshiro64StarStar creates a seeded engine.
func NewXoroshiro64StarStar(seed uint64) *Xoroshiro64StarStar {
	e := &Xoroshiro64StarStar{}
	e.Seed(seed)
	return e
}

func (e *Xoroshiro64StarStar) Seed(seed uint64) { e.s.seed(seed) }

// Uint32 returns the next 32-bit output.
func (e *Xoroshiro64StarStar) Uint32() uint32 {
	r := bits.RotateLeft32(e.s[0]*0x9e3779bb, 5) * 5
	e.s.next()
	return r
}

// Uint64 joins two 32-bit outputs, the first in the high word.
func (e *Xoroshiro64StarStar) Uint64() uint64 {
	hi := uint64(e.Uint32())
	return hi<<32 | uint64(e.Uint32())
}

// Discard skips n 32-bit outputs.
func (e *Xoroshiro64StarStar) Discard(n uint64) {
	for ; n > 0; n-- {
		e.s.next()
	}
}

// Xoroshiro128Plus is xoroshiro128+.
type Xoroshiro128Plus struct{ s state128 }

// NewXoroshiro128Plus creates a seeded engine.
func NewXoroshiro128Plus(seed uint64) *Xoroshiro128Plus {
	e := &Xoroshiro128Plus{}
	e.Seed(seed)
	return e
}

func (e *Xoroshiro128Plus) Seed(seed uint64) { e.s.seed(seed) }

func (e *Xoroshiro128Plus) Uint64() uint64 {
	r := e.s[0] + e.s[1]
	e.s.next()
	return r
}

func (e *Xoroshiro128Plus) Discard(n uint64) {
	for ; n > 0; n-- {
		e.s.next()
	}
}

// Xoroshiro128StarStar is xoroshiro128**. It is the engine behind
// PartitionedRNG.
type Xoroshiro128StarStar struct{ s state128 }

// NewXoroshiro128StarStar creates a seeded engine.
func NewXoroshiro128StarStar(seed uint64) *Xoroshiro128StarStar {
	e := &Xoroshiro128StarStar{}
	e.Seed(seed)
	return e
}

func (e *Xoroshiro128StarStar) Seed(seed uint64) { e.s.seed(seed) }

func (e *Xoroshiro128StarStar) Uint64() uint64 {
	r := bits.RotateLeft64(e.s[0]*5, 7) * 9
	e.s.next()
	return r
}

func (e *Xoroshiro128StarStar) Discard(n uint64) {
	for ; n > 0; n-- {
		e.s.next()
	}
}

var (
	_ Engine = (*Xoroshiro64Star)(nil)
	_ Engine = (*Xoroshiro64StarStar)(nil)
	_ Engine = (*Xoroshiro128Plus)(nil)
	_ Engine = (*Xoroshiro128StarStar)(nil)
)
