package common

import "testing"

func TestSeededRNG_Deterministic(t *testing.T) {
	a, b := NewSeededRNG(1234), NewSeededRNG(1234)
	for i := 0; i < 100; i++ {
		x, y := a.Random(), b.Random()
		if x != y {
			t.Fatalf("Expected identical sequences, diverged at %d: %v vs %v", i, x, y)
		}
		if x < 0 || x >= 1 {
			t.Fatalf("Expected value in [0,1), got %v", x)
		}
	}
}

func TestSeededRNG_RandomFloat(t *testing.T) {
	r := NewSeededRNG(99)
	for i := 0; i < 1000; i++ {
		v := r.RandomFloat(-1, 1)
		if v < -1 || v >= 1 {
			t.Fatalf("Expected value in [-1,1), got %v", v)
		}
	}
}

func TestSeededRNG_Chance(t *testing.T) {
	r := NewSeededRNG(5)
	hits := 0
	for i := 0; i < 10000; i++ {
		if r.Chance(0.2) {
			hits++
		}
	}
	if hits < 1700 || hits > 2300 {
		t.Errorf("Expected about 2000 hits, got %d", hits)
	}
	if r.Chance(0) {
		t.Error("Chance(0) should never hit")
	}
}

func TestDerive(t *testing.T) {
	if Derive(42, 1) == Derive(42, 2) {
		t.Error("Expected different streams to get different seeds")
	}
	if Derive(42, 1) != Derive(42, 1) {
		t.Error("Expected Derive to be deterministic")
	}
}
