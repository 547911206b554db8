// pkg/rand/rand_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import "testing"

func TestSeedDeterministic(t *testing.T) {
	var a, b PCG32
	a.Seed(42, 1)
	b.Seed(42, 1)

	for i := 0; i < 100; i++ {
		if av, bv := a.Random(), b.Random(); av != bv {
			t.Fatalf("draw %d diverged: %d != %d", i, av, bv)
		}
	}
}

func TestSeedIndependentStreams(t *testing.T) {
	var a, b PCG32
	a.Seed(1, 1)
	b.Seed(2, 1)

	same := 0
	for i := 0; i < 50; i++ {
		if a.Random() == b.Random() {
			same++
		}
	}
	if same == 50 {
		t.Errorf("two different seeds produced an identical stream")
	}
}

func TestFloatRangeBounds(t *testing.T) {
	var rr Rand
	rr.Seed(7)
	for i := 0; i < 1000; i++ {
		v := rr.FloatRange(-5, 5)
		if v < -5 || v >= 5 {
			t.Fatalf("FloatRange out of bounds: %v", v)
		}
	}
}

func TestBoundedWithinRange(t *testing.T) {
	var p PCG32
	p.Seed(99, 3)
	for i := 0; i < 1000; i++ {
		v := p.Bounded(10)
		if v >= 10 {
			t.Fatalf("Bounded(10) returned %d", v)
		}
	}
}
