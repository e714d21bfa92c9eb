// Package artifact manages the persisted model artifact set: classifier
// weights, centroid store, and the metadata file that pins the exact
// preprocessing and thresholds used at training time. A Set is immutable
// once loaded; retraining produces a whole new Set which is swapped in
// atomically.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/transactai/transactai/internal/centroid"
	"github.com/transactai/transactai/internal/classifier"
	"github.com/transactai/transactai/internal/common"
	"github.com/transactai/transactai/internal/embed"
)

// File names inside an artifact directory.
const (
	ClassifierFile = "classifier.gob"
	CentroidsFile  = "centroids.json"
	MetadataFile   = "metadata.json"
)

// SchemaVersion is bumped whenever the on-disk layout changes shape.
const SchemaVersion = 1

// Metrics records the holdout evaluation of a trained model.
type Metrics struct {
	PerLabel   map[string]LabelMetrics `json:"per_label,omitempty"`
	Accuracy   float64                 `json:"accuracy"`
	MacroF1    float64                 `json:"macro_f1"`
	WeightedF1 float64                 `json:"weighted_f1"`
}

// LabelMetrics is precision/recall/F1 for one label.
type LabelMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Metadata pins everything inference needs to reproduce training-time
// behavior exactly. Loading fails loudly when it is missing or disagrees
// with the model it sits next to.
type Metadata struct {
	TrainedAt      time.Time `json:"trained_at"`
	Labels         []string  `json:"labels"`
	Embedder       string    `json:"embedder"`
	Metrics        Metrics   `json:"metrics"`
	SchemaVersion  int       `json:"schema_version"`
	EmbedderDim    int       `json:"embedder_dim"`
	MaxInputTokens int       `json:"max_input_tokens"`
	CorpusSize     int       `json:"corpus_size"`
	FeedbackSize   int       `json:"feedback_size"`
}

// Set is one consistent model generation: classifier, centroids, and the
// metadata they were trained under.
type Set struct {
	Classifier *classifier.Model
	Centroids  *centroid.Store
	Meta       Metadata
}

// Save writes the set into dir. Each file is written to a temp name and
// renamed; metadata goes last so a partially written directory never
// passes a load.
func (s *Set) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	if err := s.Classifier.Save(filepath.Join(dir, ClassifierFile)); err != nil {
		return err
	}
	if s.Centroids != nil {
		if err := s.Centroids.Save(filepath.Join(dir, CentroidsFile)); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(s.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	tmp := filepath.Join(dir, MetadataFile+".tmp")
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return os.Rename(tmp, filepath.Join(dir, MetadataFile))
}

// Load reads a complete artifact set from dir. Missing metadata, a label
// set that disagrees with the classifier, or centroids from a different
// embedder are all fatal.
func Load(dir string, embedder embed.Embedder) (*Set, error) {
	metaPath := filepath.Join(dir, MetadataFile)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no metadata at %s", common.ErrModelUnavailable, metaPath)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMetadataMismatch, err)
	}
	if meta.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: schema version %d, expected %d",
			common.ErrMetadataMismatch, meta.SchemaVersion, SchemaVersion)
	}
	if meta.Embedder != embedder.Name() || meta.EmbedderDim != embedder.Dim() {
		return nil, fmt.Errorf("%w: trained with embedder %s/%d, running %s/%d",
			common.ErrMetadataMismatch, meta.Embedder, meta.EmbedderDim, embedder.Name(), embedder.Dim())
	}

	cls, err := classifier.Load(filepath.Join(dir, ClassifierFile))
	if err != nil {
		return nil, err
	}
	if !sameLabels(meta.Labels, cls.Labels()) {
		return nil, fmt.Errorf("%w: metadata labels %v, classifier labels %v",
			common.ErrMetadataMismatch, meta.Labels, cls.Labels())
	}

	set := &Set{Classifier: cls, Meta: meta}

	centroidPath := filepath.Join(dir, CentroidsFile)
	if _, statErr := os.Stat(centroidPath); statErr == nil {
		store, loadErr := centroid.Load(centroidPath, embedder)
		if loadErr != nil {
			return nil, loadErr
		}
		known := make(map[string]bool, len(meta.Labels))
		for _, label := range meta.Labels {
			known[label] = true
		}
		for _, label := range store.Labels() {
			if !known[label] {
				return nil, fmt.Errorf("%w: centroid for untrained label %q",
					common.ErrMetadataMismatch, label)
			}
		}
		set.Centroids = store
	}

	return set, nil
}

func sameLabels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// Holder owns the live artifact set. In-flight inference always sees one
// fully consistent generation; Swap replaces the whole set at once.
type Holder struct {
	mu      sync.RWMutex
	current *Set
}

// NewHolder creates a holder serving the given set.
func NewHolder(set *Set) *Holder {
	return &Holder{current: set}
}

// Current returns the live set, or nil before any model is loaded.
func (h *Holder) Current() *Set {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Swap atomically replaces the live set and returns the previous one.
func (h *Holder) Swap(set *Set) *Set {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.current
	h.current = set
	return prev
}
