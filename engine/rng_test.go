package engine

import "testing"

func TestRNG_SameSeedSameSequence(t *testing.T) {
	a, b := NewRNG(42), NewRNG(42)
	weights := []int{2, 5, 1}
	for i := 0; i < 64; i++ {
		if x, y := a.Pick(weights), b.Pick(weights); x != y {
			t.Fatalf("draw %d: %d != %d", i, x, y)
		}
	}
}

func TestRNG_PickFavoursHeavyWeight(t *testing.T) {
	g := NewRNG(7)
	counts := [3]int{}
	for i := 0; i < 3000; i++ {
		n := g.Pick([]int{1, 1, 8})
		if n < 0 || n > 2 {
			t.Fatalf("Pick = %d, out of range", n)
		}
		counts[n]++
	}
	if counts[2] <= counts[0] || counts[2] <= counts[1] {
		t.Errorf("counts = %v, want index 2 most frequent", counts)
	}
}

func TestRNG_PickSingle(t *testing.T) {
	g := NewRNG(1)
	for i := 0; i < 10; i++ {
		if n := g.Pick([]int{4}); n != 0 {
			t.Fatalf("Pick = %d, want 0", n)
		}
	}
}

func TestRNG_Draws(t *testing.T) {
	g := NewRNG(3)
	for i := 0; i < 5; i++ {
		g.Pick([]int{1, 1})
	}
	if g.Draws() != 5 {
		t.Errorf("Draws = %d, want 5", g.Draws())
	}
	if g.Seed() != 3 {
		t.Errorf("Seed = %d, want 3", g.Seed())
	}
}
