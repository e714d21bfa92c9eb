// Package common provides shared utilities and types used across the engine.
package common

import (
	"errors"
	"fmt"
)

// Engine error taxonomy.
var (
	// ErrEmptyInput marks empty or non-text input. The normalizer still
	// succeeds on it; the fusion controller short-circuits instead of
	// invoking the classifier.
	ErrEmptyInput = errors.New("empty input")

	// ErrModelUnavailable means no trained artifact could be loaded. Fatal
	// at startup: the service must refuse to serve rather than silently
	// skip pipeline stages.
	ErrModelUnavailable = errors.New("model artifact unavailable")

	// ErrMetadataMismatch means persisted metadata disagrees with the
	// loaded model's label set or shape. Fatal at load time.
	ErrMetadataMismatch = errors.New("artifact metadata inconsistent")

	// ErrNoCentroids means the centroid store holds no vectors. Expected
	// after adding labels that have never been trained on; the fusion
	// controller treats it as recoverable.
	ErrNoCentroids = errors.New("no centroids available")

	// ErrTrainingData marks degenerate training input (empty dataset,
	// fewer than two distinct labels).
	ErrTrainingData = errors.New("insufficient training data")

	// ErrValidationRegression means the freshly trained model scored worse
	// than the live one on the holdout set; the live artifact is kept.
	ErrValidationRegression = errors.New("holdout validation regression")

	// ErrRetrainInProgress means a retraining job is already running.
	ErrRetrainInProgress = errors.New("retraining already in progress")

	// ErrUnknownCategory means a caller referenced a label that was never
	// registered.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrDuplicateCategory means a label is already registered.
	ErrDuplicateCategory = errors.New("duplicate category")
)

// InferenceError wraps an unexpected failure inside a pipeline stage.
// These must surface to the caller rather than be hidden behind a
// confident-looking fallback decision.
type InferenceError struct {
	Err   error
	Stage string
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed in %s stage: %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// NewInferenceError wraps err with the pipeline stage that raised it.
func NewInferenceError(stage string, err error) error {
	return &InferenceError{Stage: stage, Err: err}
}

// IsRecoverable reports whether an inference failure may legally be mapped
// to a FALLBACK decision instead of propagating.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrNoCentroids)
}
