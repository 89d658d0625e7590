package index

import (
	"math"
	"testing"
)

func TestEmbedDeterministic(t *testing.T) {
	e := NewDeterministicEmbedder(32)
	a := e.Embed("the quick brown fox jumps over the lazy dog")
	b := e.Embed("the quick brown fox jumps over the lazy dog")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at index %d: %v != %v", i, a[i], b[i])
		}
	}
}

func TestEmbedEmptyIsZeroVector(t *testing.T) {
	e := NewDeterministicEmbedder(16)
	v := e.Embed("")
	for i, f := range v {
		if f != 0 {
			t.Fatalf("expected zero vector, got nonzero at %d: %v", i, f)
		}
	}
}

func TestEmbedIsL2Normalized(t *testing.T) {
	e := NewDeterministicEmbedder(64)
	v := e.Embed("governance disclosure reporting emissions risk energy data")
	var normSq float64
	for _, f := range v {
		normSq += float64(f) * float64(f)
	}
	norm := math.Sqrt(normSq)
	if math.Abs(norm-1.0) > 1e-5 {
		t.Fatalf("expected unit norm, got %v", norm)
	}
}

func TestEmbedOrderInsensitiveToTokenOrder(t *testing.T) {
	e := NewDeterministicEmbedder(32)
	a := e.Embed("alpha beta gamma")
	b := e.Embed("gamma alpha beta")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected order-insensitive bag-of-words embedding, diverged at %d", i)
		}
	}
}
