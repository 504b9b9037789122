package commander

import (
	"math/rand"
	"testing"
)

func TestUniformCollectionEmpty(t *testing.T) {
	g := UniformCollection[int]{}
	rng := rand.New(rand.NewSource(1))
	if _, ok := g.Generate(rng); ok {
		t.Fatal("expected empty collection to fail to produce")
	}
}

func TestUniformCollectionPicksMember(t *testing.T) {
	items := []int{10, 20, 30}
	g := UniformCollection[int]{Items: items}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		v, ok := g.Generate(rng)
		if !ok {
			t.Fatal("expected a value")
		}
		found := false
		for _, it := range items {
			if it == v {
				found = true
			}
		}
		if !found {
			t.Fatalf("generated %d not in %v", v, items)
		}
	}
}

func TestUniformRangeBounds(t *testing.T) {
	g := UniformRange{Lo: 5, Hi: 8}
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 50; i++ {
		v, ok := g.Generate(rng)
		if !ok || v < 5 || v >= 8 {
			t.Fatalf("value %d out of [5,8)", v)
		}
	}
}

func TestConstantAlwaysSame(t *testing.T) {
	g := Constant[string]{V: "x"}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 5; i++ {
		v, ok := g.Generate(rng)
		if !ok || v != "x" {
			t.Fatalf("Constant produced %q", v)
		}
	}
}

func TestSwitchConstantRespectsProbabilityExtremes(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	always := SwitchConstant[int]{A: Constant[int]{V: 1}, B: Constant[int]{V: 2}, P: 1}
	for i := 0; i < 20; i++ {
		v, _ := always.Generate(rng)
		if v != 1 {
			t.Fatalf("P=1 produced %d, want 1", v)
		}
	}
	never := SwitchConstant[int]{A: Constant[int]{V: 1}, B: Constant[int]{V: 2}, P: 0}
	for i := 0; i < 20; i++ {
		v, _ := never.Generate(rng)
		if v != 2 {
			t.Fatalf("P=0 produced %d, want 2", v)
		}
	}
}

func TestDefaultOrFallsBackOnEmptyInner(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	g := DefaultOr[int]{Default: -100, Inner: UniformCollection[int]{}}
	v, ok := g.Generate(rng)
	if !ok || v != -100 {
		t.Fatalf("DefaultOr with empty inner = %d, %v; want -100, true", v, ok)
	}
}

func TestDefaultOrUsesInnerWhenNonEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	g := DefaultOr[int]{Default: -1, Inner: UniformCollection[int]{Items: []int{7}}}
	v, ok := g.Generate(rng)
	if !ok || v != 7 {
		t.Fatalf("DefaultOr with inner = %d, %v; want 7, true", v, ok)
	}
}

func TestRandomFlagsIncludeExclude(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := &RandomFlags[uint32]{Bits: []uint32{1, 2, 4, 8}, P: 1.0}
	g.Include(16)
	g.Exclude(2)
	v, _ := g.Generate(rng)
	if v&2 != 0 {
		t.Fatalf("excluded bit set: %b", v)
	}
	if v&16 == 0 {
		t.Fatalf("included bit not set: %b", v)
	}
}

func TestDeterminismUnderSeed(t *testing.T) {
	mk := func() []int {
		rng := rand.New(rand.NewSource(42))
		g := UniformCollection[int]{Items: []int{1, 2, 3, 4, 5, 6, 7, 8, 9}}
		var out []int
		for i := 0; i < 20; i++ {
			v, _ := g.Generate(rng)
			out = append(out, v)
		}
		return out
	}
	a, b := mk(), mk()
	if len(a) != len(b) {
		t.Fatal("length mismatch")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sequence diverged at %d: %d vs %d", i, a[i], b[i])
		}
	}
}
