// Package service defines the interfaces that connect the engine's
// components to each other and to its collaborators.
package service

import (
	"context"
	"time"

	"github.com/transactai/transactai/internal/model"
)

// Storage defines the contract for the persistence layer backing the
// category registry, the training corpus, and the feedback log.
type Storage interface {
	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*model.Category, error)

	// Training corpus operations
	SaveTrainingExamples(ctx context.Context, examples []model.TrainingExample) error
	GetTrainingExamples(ctx context.Context) ([]model.TrainingExample, error)

	// Feedback log operations. Appends are the only mutation; entries are
	// never rewritten in place.
	AppendFeedback(ctx context.Context, entry model.FeedbackEntry) error
	GetFeedback(ctx context.Context) ([]model.FeedbackEntry, error)
	CountFeedbackSince(ctx context.Context, since time.Time) (int, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RuleEvaluator is the deterministic pattern layer.
type RuleEvaluator interface {
	// Evaluate scans the rule table and returns the best verdict; a zero
	// verdict means no rule matched.
	Evaluate(raw, clean string) model.RuleVerdict
}

// SequenceClassifier is the trained text classification model.
type SequenceClassifier interface {
	// Predict returns the probability distribution over the trained label
	// set. Safe for concurrent callers.
	Predict(clean string) (model.ClassifierVerdict, error)
}

// CentroidIndex is the embedding-similarity fallback.
type CentroidIndex interface {
	// NearestLabel returns the label whose centroid is most similar to the
	// text, with the cosine similarity as score.
	NearestLabel(clean string) (model.CentroidVerdict, error)
}
