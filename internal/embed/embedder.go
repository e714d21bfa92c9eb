// Package embed provides the sentence-embedding abstraction used by the
// centroid fallback. The engine only ever sees the Embedder interface, so
// the backing model can be swapped without touching centroid logic —
// the identifier recorded in artifact metadata guards against mixing
// vectors from different embedders.
package embed

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// Embedder maps text to a fixed-size vector. Implementations must be
// stateless and safe for concurrent use.
type Embedder interface {
	// Embed returns the vector for text. Embedding empty text yields a
	// zero vector, not an error.
	Embed(text string) ([]float64, error)
	// Dim is the fixed vector size.
	Dim() int
	// Name identifies the embedding model for artifact metadata.
	Name() string
}

// HashingEmbedder embeds text with the hashing trick: unigram and bigram
// term frequencies are hashed into a fixed-size vector which is then
// L2-normalized. No vocabulary is stored, so the embedding of a given
// string never changes between processes.
type HashingEmbedder struct {
	dim int
}

// DefaultDim is the vector size used when none is configured.
const DefaultDim = 256

// NewHashingEmbedder creates an embedder with the given vector size.
func NewHashingEmbedder(dim int) *HashingEmbedder {
	if dim <= 0 {
		dim = DefaultDim
	}
	return &HashingEmbedder{dim: dim}
}

// Embed hashes unigrams and bigrams of text into a normalized vector.
func (e *HashingEmbedder) Embed(text string) ([]float64, error) {
	vec := make([]float64, e.dim)
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return vec, nil
	}

	for i, tok := range tokens {
		vec[e.slot(tok)]++
		if i+1 < len(tokens) {
			vec[e.slot(tok+" "+tokens[i+1])]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// Dim returns the fixed vector size.
func (e *HashingEmbedder) Dim() int { return e.dim }

// Name returns the metadata identifier for this embedder configuration.
func (e *HashingEmbedder) Name() string {
	return fmt.Sprintf("hashing-ngram-v1/%d", e.dim)
}

func (e *HashingEmbedder) slot(term string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(term))
	return int(h.Sum32() % uint32(e.dim))
}
