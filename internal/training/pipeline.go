// Package training implements the offline pipeline that produces the
// classifier and centroid artifacts from labeled data, plus the retrainer
// job and scheduler that drive it. Nothing in this package runs on the
// request path.
package training

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/transactai/transactai/internal/artifact"
	"github.com/transactai/transactai/internal/centroid"
	"github.com/transactai/transactai/internal/classifier"
	"github.com/transactai/transactai/internal/common"
	"github.com/transactai/transactai/internal/embed"
	"github.com/transactai/transactai/internal/model"
)

// Hyperparameters control one pipeline run. Zero values fall back to the
// documented defaults.
type Hyperparameters struct {
	// Seed makes shuffling, splitting, and oversampling reproducible.
	Seed int64
	// MaxInputTokens caps classifier input length; recorded in metadata so
	// inference truncates identically.
	MaxInputTokens int
	// TrainRatio and ValRatio partition the dataset; the remainder is the
	// holdout split. Defaults: 0.70 / 0.15 / 0.15.
	TrainRatio float64
	ValRatio   float64
	// MinLabelExamples drops labels rarer than this before splitting.
	MinLabelExamples int
	// RegressionTolerance is how much holdout accuracy may fall below the
	// previous model before the run is rejected.
	RegressionTolerance float64
}

// Defaults for zero-valued hyperparameters.
const (
	DefaultSeed             = 42
	DefaultMaxInputTokens   = 64
	DefaultTrainRatio       = 0.70
	DefaultValRatio         = 0.15
	DefaultMinLabelExamples = 2
	DefaultRegressionTol    = 0.02
)

func (hp Hyperparameters) withDefaults() Hyperparameters {
	if hp.Seed == 0 {
		hp.Seed = DefaultSeed
	}
	if hp.MaxInputTokens <= 0 {
		hp.MaxInputTokens = DefaultMaxInputTokens
	}
	if hp.TrainRatio <= 0 || hp.TrainRatio >= 1 {
		hp.TrainRatio = DefaultTrainRatio
	}
	if hp.ValRatio <= 0 || hp.TrainRatio+hp.ValRatio >= 1 {
		hp.ValRatio = DefaultValRatio
	}
	if hp.MinLabelExamples <= 0 {
		hp.MinLabelExamples = DefaultMinLabelExamples
	}
	if hp.RegressionTolerance <= 0 {
		hp.RegressionTolerance = DefaultRegressionTol
	}
	return hp
}

// Report summarizes one pipeline run.
type Report struct {
	DroppedLabels []string
	Metrics       artifact.Metrics
	TrainSize     int
	ValSize       int
	HoldoutSize   int
	FeedbackUsed  int
}

// Result is a freshly trained artifact set plus its report.
type Result struct {
	Set    *artifact.Set
	Report Report
}

// Run executes the full pipeline: merge corpus and feedback, deduplicate
// by clean text, drop degenerate labels, split 70/15/15 stratified by
// label, oversample training minorities, fit the classifier, build
// centroids, and evaluate on the holdout split. The previous metadata, if
// any, gates the non-regression sanity check.
func Run(
	ctx context.Context,
	corpus []model.TrainingExample,
	feedback []model.FeedbackEntry,
	embedder embed.Embedder,
	hp Hyperparameters,
	previous *artifact.Metadata,
) (*Result, error) {
	hp = hp.withDefaults()

	merged := mergeAndDedupe(corpus, feedback)
	if len(merged) == 0 {
		return nil, fmt.Errorf("%w: empty dataset after merge", common.ErrTrainingData)
	}

	kept, dropped := filterRareLabels(merged, hp.MinLabelExamples)
	if len(dropped) > 0 {
		slog.Warn("Dropping rare labels", "count", len(dropped), "labels", dropped)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: dataset empty after filtering", common.ErrTrainingData)
	}

	train, val, holdout, err := stratifiedSplit(kept, hp)
	if err != nil {
		return nil, err
	}
	if err := ensureDisjoint(train, val, holdout); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	oversampled := oversample(train, hp.Seed)
	slog.Info("Training classifier",
		"train", len(train),
		"oversampled", len(oversampled),
		"val", len(val),
		"holdout", len(holdout))

	cls, err := classifier.Train(oversampled)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	centroids, err := centroid.Build(embedder, train)
	if err != nil {
		return nil, err
	}

	metrics, err := evaluate(ctx, cls, holdout)
	if err != nil {
		return nil, err
	}

	if previous != nil && metrics.Accuracy < previous.Metrics.Accuracy-hp.RegressionTolerance {
		return nil, fmt.Errorf("%w: holdout accuracy %.3f, previous %.3f",
			common.ErrValidationRegression, metrics.Accuracy, previous.Metrics.Accuracy)
	}

	set := &artifact.Set{
		Classifier: cls,
		Centroids:  centroids,
		Meta: artifact.Metadata{
			SchemaVersion:  artifact.SchemaVersion,
			TrainedAt:      time.Now().UTC(),
			Labels:         cls.Labels(),
			Embedder:       embedder.Name(),
			EmbedderDim:    embedder.Dim(),
			MaxInputTokens: hp.MaxInputTokens,
			CorpusSize:     len(corpus),
			FeedbackSize:   len(feedback),
			Metrics:        metrics,
		},
	}

	return &Result{
		Set: set,
		Report: Report{
			Metrics:       metrics,
			TrainSize:     len(train),
			ValSize:       len(val),
			HoldoutSize:   len(holdout),
			DroppedLabels: dropped,
			FeedbackUsed:  len(feedback),
		},
	}, nil
}

// mergeAndDedupe combines the corpus with the feedback log. Feedback wins
// on conflict: a user correction for a text overrides the corpus label.
func mergeAndDedupe(corpus []model.TrainingExample, feedback []model.FeedbackEntry) []model.TrainingExample {
	byText := make(map[string]string, len(corpus)+len(feedback))
	order := make([]string, 0, len(corpus)+len(feedback))

	add := func(text, label string) {
		if text == "" || label == "" {
			return
		}
		if _, seen := byText[text]; !seen {
			order = append(order, text)
		}
		byText[text] = label
	}

	for _, ex := range corpus {
		add(ex.CleanText, ex.Label)
	}
	for _, entry := range feedback {
		add(entry.CleanText, entry.CorrectedCategory)
	}

	out := make([]model.TrainingExample, 0, len(order))
	for _, text := range order {
		out = append(out, model.TrainingExample{CleanText: text, Label: byText[text]})
	}
	return out
}

func filterRareLabels(examples []model.TrainingExample, minCount int) (kept []model.TrainingExample, dropped []string) {
	counts := make(map[string]int)
	for _, ex := range examples {
		counts[ex.Label]++
	}

	for label, count := range counts {
		if count < minCount {
			dropped = append(dropped, label)
		}
	}
	sort.Strings(dropped)

	droppedSet := make(map[string]bool, len(dropped))
	for _, label := range dropped {
		droppedSet[label] = true
	}
	for _, ex := range examples {
		if !droppedSet[ex.Label] {
			kept = append(kept, ex)
		}
	}
	return kept, dropped
}

// stratifiedSplit shuffles each label's examples with the run seed and
// cuts them train/val/holdout so every label appears in every split it
// has enough examples for.
func stratifiedSplit(examples []model.TrainingExample, hp Hyperparameters) (train, val, holdout []model.TrainingExample, err error) {
	byLabel := make(map[string][]model.TrainingExample)
	var labels []string
	for _, ex := range examples {
		if _, ok := byLabel[ex.Label]; !ok {
			labels = append(labels, ex.Label)
		}
		byLabel[ex.Label] = append(byLabel[ex.Label], ex)
	}
	if len(labels) < 2 {
		return nil, nil, nil, fmt.Errorf("%w: need at least 2 distinct labels, got %d",
			common.ErrTrainingData, len(labels))
	}
	sort.Strings(labels)

	rng := rand.New(rand.NewSource(hp.Seed))
	for _, label := range labels {
		group := byLabel[label]
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})

		nTrain := int(float64(len(group)) * hp.TrainRatio)
		if nTrain < 1 {
			nTrain = 1
		}
		nVal := int(float64(len(group)) * hp.ValRatio)
		if nTrain+nVal > len(group) {
			nVal = len(group) - nTrain
		}

		train = append(train, group[:nTrain]...)
		val = append(val, group[nTrain:nTrain+nVal]...)
		holdout = append(holdout, group[nTrain+nVal:]...)
	}
	return train, val, holdout, nil
}

// ensureDisjoint aborts when the same clean text leaked into two splits.
func ensureDisjoint(splits ...[]model.TrainingExample) error {
	seen := make(map[string]int)
	for i, split := range splits {
		for _, ex := range split {
			if prev, ok := seen[ex.CleanText]; ok && prev != i {
				return fmt.Errorf("%w: text %q appears in two splits",
					common.ErrTrainingData, ex.CleanText)
			}
			seen[ex.CleanText] = i
		}
	}
	return nil
}

// oversample replicates minority-label examples until every label matches
// the majority count, so no label is starved during fitting.
func oversample(train []model.TrainingExample, seed int64) []model.TrainingExample {
	byLabel := make(map[string][]model.TrainingExample)
	var labels []string
	max := 0
	for _, ex := range train {
		if _, ok := byLabel[ex.Label]; !ok {
			labels = append(labels, ex.Label)
		}
		byLabel[ex.Label] = append(byLabel[ex.Label], ex)
		if len(byLabel[ex.Label]) > max {
			max = len(byLabel[ex.Label])
		}
	}
	sort.Strings(labels)

	rng := rand.New(rand.NewSource(seed))
	out := make([]model.TrainingExample, 0, max*len(labels))
	for _, label := range labels {
		group := byLabel[label]
		out = append(out, group...)
		for n := len(group); n < max; n++ {
			out = append(out, group[rng.Intn(len(group))])
		}
	}
	return out
}

// evaluate scores the classifier on the holdout split.
func evaluate(ctx context.Context, cls *classifier.Model, holdout []model.TrainingExample) (artifact.Metrics, error) {
	if len(holdout) == 0 {
		return artifact.Metrics{}, nil
	}

	bar := progressbar.Default(int64(len(holdout)), "evaluating")
	yTrue := make([]string, 0, len(holdout))
	yPred := make([]string, 0, len(holdout))

	for _, ex := range holdout {
		if err := ctx.Err(); err != nil {
			return artifact.Metrics{}, err
		}
		verdict, err := cls.Predict(ex.CleanText)
		if err != nil {
			return artifact.Metrics{}, err
		}
		yTrue = append(yTrue, ex.Label)
		yPred = append(yPred, verdict.TopCategory)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	return computeMetrics(yTrue, yPred), nil
}
