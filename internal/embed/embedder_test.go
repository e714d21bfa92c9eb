package embed

import (
	"math"
	"testing"
)

func TestHashingEmbedderDeterministic(t *testing.T) {
	e := NewHashingEmbedder(128)

	first, err := e.Embed("paid amt to swiggy")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	second, err := e.Embed("paid amt to swiggy")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("embedding differs at index %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestHashingEmbedderUnitNorm(t *testing.T) {
	e := NewHashingEmbedder(64)

	vec, err := e.Embed("electricity bill payment for march")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 64 {
		t.Fatalf("len(vec) = %d, want 64", len(vec))
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
		t.Errorf("vector norm = %v, want 1.0", math.Sqrt(norm))
	}
}

func TestHashingEmbedderEmptyText(t *testing.T) {
	e := NewHashingEmbedder(32)

	vec, err := e.Embed("")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("zero vector expected for empty text, index %d = %v", i, v)
		}
	}
}

func TestHashingEmbedderDistinguishesTexts(t *testing.T) {
	e := NewHashingEmbedder(256)

	a, _ := e.Embed("petrol pump fuel payment")
	b, _ := e.Embed("netflix monthly subscription")

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("unrelated texts produced identical embeddings")
	}
}

func TestHashingEmbedderDefaults(t *testing.T) {
	e := NewHashingEmbedder(0)
	if e.Dim() != DefaultDim {
		t.Errorf("Dim() = %d, want %d", e.Dim(), DefaultDim)
	}
	if e.Name() != "hashing-ngram-v1/256" {
		t.Errorf("Name() = %q", e.Name())
	}
}
