// Package centroid implements the embedding-similarity fallback: one mean
// vector per trained label, compared against incoming text by cosine
// similarity. The store is rebuilt wholesale on every retraining and never
// mutated in place, so reads need no locking.
package centroid

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/transactai/transactai/internal/common"
	"github.com/transactai/transactai/internal/embed"
	"github.com/transactai/transactai/internal/model"
)

// Store holds the per-label centroids produced at training time.
type Store struct {
	embedder embed.Embedder
	labels   []string
	vectors  [][]float64
}

// Build computes one centroid per label from the training examples: the
// mean of the label's example embeddings, re-normalized to unit length.
// Labels with no examples simply get no centroid.
func Build(embedder embed.Embedder, examples []model.TrainingExample) (*Store, error) {
	sums := make(map[string][]float64)
	counts := make(map[string]int)

	for _, ex := range examples {
		if ex.CleanText == "" || ex.Label == "" {
			continue
		}
		vec, err := embedder.Embed(ex.CleanText)
		if err != nil {
			return nil, fmt.Errorf("failed to embed training example: %w", err)
		}
		sum, ok := sums[ex.Label]
		if !ok {
			sum = make([]float64, embedder.Dim())
			sums[ex.Label] = sum
		}
		for i, v := range vec {
			sum[i] += v
		}
		counts[ex.Label]++
	}

	labels := make([]string, 0, len(sums))
	for label := range sums {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	store := &Store{embedder: embedder}
	for _, label := range labels {
		vec := sums[label]
		n := float64(counts[label])
		var norm float64
		for i := range vec {
			vec[i] /= n
			norm += vec[i] * vec[i]
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
		store.labels = append(store.labels, label)
		store.vectors = append(store.vectors, vec)
	}
	return store, nil
}

// NearestLabel embeds clean text once and returns the label whose centroid
// has maximal cosine similarity. Returns ErrNoCentroids when the store is
// empty, which callers treat as a recoverable condition.
func (s *Store) NearestLabel(clean string) (model.CentroidVerdict, error) {
	if len(s.labels) == 0 {
		return model.CentroidVerdict{}, common.ErrNoCentroids
	}

	vec, err := s.embedder.Embed(clean)
	if err != nil {
		return model.CentroidVerdict{}, common.NewInferenceError("centroid", err)
	}

	best := model.CentroidVerdict{Cosine: -1}
	for i, centroid := range s.vectors {
		if sim := cosine(vec, centroid); sim > best.Cosine {
			best = model.CentroidVerdict{Category: s.labels[i], Cosine: sim}
		}
	}
	return best, nil
}

// Labels returns the labels that currently have a centroid.
func (s *Store) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// fileFormat is the on-disk layout of a centroid store.
type fileFormat struct {
	Embedder string               `json:"embedder"`
	Dim      int                  `json:"dim"`
	Vectors  map[string][]float64 `json:"vectors"`
}

// Save writes the store to path as JSON.
func (s *Store) Save(path string) error {
	payload := fileFormat{
		Embedder: s.embedder.Name(),
		Dim:      s.embedder.Dim(),
		Vectors:  make(map[string][]float64, len(s.labels)),
	}
	for i, label := range s.labels {
		payload.Vectors[label] = s.vectors[i]
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode centroids: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write centroids: %w", err)
	}
	return os.Rename(tmp, path)
}

// Load reads a centroid store from path, rejecting files written by a
// different embedder or vector size.
func Load(path string, embedder embed.Embedder) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read centroids: %w", err)
	}

	var payload fileFormat
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode centroids: %w", err)
	}
	if payload.Embedder != embedder.Name() || payload.Dim != embedder.Dim() {
		return nil, fmt.Errorf("%w: centroids built with %s/%d, embedder is %s/%d",
			common.ErrMetadataMismatch, payload.Embedder, payload.Dim, embedder.Name(), embedder.Dim())
	}

	store := &Store{embedder: embedder}
	labels := make([]string, 0, len(payload.Vectors))
	for label := range payload.Vectors {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		vec := payload.Vectors[label]
		if len(vec) != payload.Dim {
			return nil, fmt.Errorf("%w: centroid for %q has %d dimensions, expected %d",
				common.ErrMetadataMismatch, label, len(vec), payload.Dim)
		}
		store.labels = append(store.labels, label)
		store.vectors = append(store.vectors, vec)
	}
	return store, nil
}
