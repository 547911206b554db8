// pkg/rand/rand.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	"sync"
)

///////////////////////////////////////////////////////////////////////////
// PCG32

// This is based on mtj's pcg32 implementation, updated with exported
// variables for the state (so we can serialize it properly.)

const (
	pcg32State      = 0x853c49e6748fea9b //  9600629759793949339
	pcg32Increment  = 0xda3e39cb94b95bdb // 15726070495360670683
	pcg32Multiplier = 0x5851f42d4c957f2d //  6364136223846793005
)

type PCG32 struct {
	State     uint64
	Increment uint64
}

func NewPCG32() PCG32 {
	return PCG32{pcg32State, pcg32Increment}
}

// Seed resets the generator to a deterministic stream keyed by state and
// sequence. The engine seeds one PCG32 per aircraft from its instance ID so
// drift is reproducible across ticks without any aircraft's draws
// perturbing another's.
func (p *PCG32) Seed(state, sequence uint64) {
	p.Increment = (sequence << 1) | 1
	p.State = (state+p.Increment)*pcg32Multiplier + p.Increment
}

func (p *PCG32) Random() uint32 {
	// Advance 64-bit linear congruential generator to new state
	oldState := p.State
	p.State = oldState*pcg32Multiplier + p.Increment

	// Confuse and permute 32-bit output from old state
	xorShifted := uint32(((oldState >> 18) ^ oldState) >> 27)
	rot := uint32(oldState >> 59)
	return (xorShifted >> rot) | (xorShifted << ((-rot) & 31))
}

func (p *PCG32) Bounded(bound uint32) uint32 {
	if bound == 0 {
		return 0
	}
	threshold := -bound % bound
	for {
		r := p.Random()
		if r >= threshold {
			return r % bound
		}
	}
}

///////////////////////////////////////////////////////////////////////////
// Random numbers.

type Rand struct {
	PCG32
}

func New() Rand {
	return Rand{PCG32: NewPCG32()}
}

func (r *Rand) Seed(s uint64) {
	r.PCG32.Seed(s, pcg32Increment)
}

func (r *Rand) Intn(n int) int {
	return int(r.Bounded(uint32(n)))
}

// Float32 returns a pseudo-random value in [0, 1).
func (r *Rand) Float32() float32 {
	return float32(r.Random()) / (1 << 32)
}

// Float64 returns a pseudo-random value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.Random()) / (1 << 32)
}

// FloatRange returns a pseudo-random value uniformly distributed in
// [low, high). Used for bounded heading/speed drift when an aircraft has
// no active target.
func (r *Rand) FloatRange(low, high float64) float64 {
	return low + r.Float64()*(high-low)
}

func (r *Rand) Uint32() uint32 {
	return r.Random()
}

// Drop-in replacement for the subset of math/rand that we use...
var r Rand
var mu sync.Mutex // though sadly, we're grabbing this for each call with it..

func init() {
	r = New()
}

func Seed(s int64) {
	mu.Lock()
	defer mu.Unlock()
	r.PCG32.Seed(uint64(s), pcg32Increment)
}

func Intn(n int) int {
	mu.Lock()
	defer mu.Unlock()
	return int(r.Bounded(uint32(n)))
}

func Float32() float32 {
	mu.Lock()
	defer mu.Unlock()
	return float32(r.Random()) / (1 << 32)
}

func Uint32() uint32 {
	mu.Lock()
	defer mu.Unlock()
	return r.Uint32()
}
