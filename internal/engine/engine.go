// Package engine exposes the boundary contract of the categorization
// core to its collaborators: classify, register a label, submit a
// correction, trigger retraining. Collaborating shells (HTTP layer,
// notification listener) call only through this surface.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/transactai/transactai/internal/common"
	"github.com/transactai/transactai/internal/fusion"
	"github.com/transactai/transactai/internal/model"
	"github.com/transactai/transactai/internal/normalize"
	"github.com/transactai/transactai/internal/service"
	"github.com/transactai/transactai/internal/training"
)

// Engine is the explicitly constructed, explicitly owned context object
// holding all process-wide state: the loaded rule table, model artifacts,
// and persistence. No ambient singletons.
type Engine struct {
	storage   service.Storage
	fusion    *fusion.Engine
	retrainer *training.Retrainer
}

// New wires the engine from its dependencies.
func New(storage service.Storage, fusionEngine *fusion.Engine, retrainer *training.Retrainer) *Engine {
	return &Engine{
		storage:   storage,
		fusion:    fusionEngine,
		retrainer: retrainer,
	}
}

// Classify is the single synchronous classification entry point.
func (e *Engine) Classify(ctx context.Context, text string) (model.Decision, error) {
	return e.fusion.Classify(ctx, text)
}

// ClassifyBatch classifies many notifications in one call.
func (e *Engine) ClassifyBatch(ctx context.Context, texts []string) ([]model.Decision, error) {
	return e.fusion.ClassifyBatch(ctx, texts)
}

// AddLabel registers a new category name into the label universe. The
// label becomes available for rules and manual assignment immediately
// but has no classifier weight or centroid until the next retraining.
func (e *Engine) AddLabel(ctx context.Context, name, description string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: label name", common.ErrEmptyInput)
	}
	return e.storage.CreateCategory(ctx, name, description)
}

// SubmitCorrection appends a user correction to the feedback log without
// touching any live model state. The corrected label must already be
// registered.
func (e *Engine) SubmitCorrection(ctx context.Context, text, correctedLabel string) error {
	clean := normalize.Clean(text)
	if clean == "" {
		return fmt.Errorf("%w: correction text", common.ErrEmptyInput)
	}

	if correctedLabel != model.FallbackCategory {
		if _, err := e.storage.GetCategoryByName(ctx, correctedLabel); err != nil {
			return err
		}
	}

	// Record what the engine would currently say, so the log captures the
	// disagreement being corrected. Classification errors here must not
	// block the append.
	var predicted string
	var confidence float64
	if decision, err := e.fusion.Classify(ctx, text); err == nil {
		predicted = decision.Category
		confidence = decision.Confidence
	}

	return e.storage.AppendFeedback(ctx, model.FeedbackEntry{
		RawText:           text,
		CleanText:         clean,
		PredictedCategory: predicted,
		CorrectedCategory: correctedLabel,
		Confidence:        confidence,
	})
}

// TriggerRetrain starts an asynchronous retraining job and returns its
// handle immediately. Callers poll RetrainJob or wait on the handle.
func (e *Engine) TriggerRetrain(ctx context.Context) (*training.Job, error) {
	return e.retrainer.Trigger(ctx)
}

// RetrainJob looks up a retraining job by ID.
func (e *Engine) RetrainJob(id string) (*training.Job, bool) {
	return e.retrainer.Job(id)
}

// Categories lists the registered label universe.
func (e *Engine) Categories(ctx context.Context) ([]model.Category, error) {
	return e.storage.GetCategories(ctx)
}
