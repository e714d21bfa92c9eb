// Package fusion implements the controller that reconciles the rule,
// classifier, and centroid signals into one decision. The pipeline is a
// strict state machine: normalize once, rule check, classifier check,
// embedding rescue, fallback — terminal on the first accepting stage.
package fusion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/transactai/transactai/internal/artifact"
	"github.com/transactai/transactai/internal/common"
	"github.com/transactai/transactai/internal/model"
	"github.com/transactai/transactai/internal/normalize"
	"github.com/transactai/transactai/internal/service"
)

// Snapshot is one consistent view of the loaded model state. All fields
// come from the same artifact generation.
type Snapshot struct {
	Classifier service.SequenceClassifier
	Centroids  service.CentroidIndex
	MaxTokens  int
}

// ModelSource supplies the current model snapshot. Implementations must
// return a fully consistent generation; the fusion engine never sees a
// half-swapped artifact set.
type ModelSource interface {
	Snapshot() Snapshot
}

// HolderSource adapts an artifact.Holder into a ModelSource.
type HolderSource struct {
	Holder *artifact.Holder
}

// Snapshot returns the live artifact generation as a fusion snapshot.
func (s HolderSource) Snapshot() Snapshot {
	set := s.Holder.Current()
	if set == nil {
		return Snapshot{}
	}
	snap := Snapshot{
		Classifier: set.Classifier,
		MaxTokens:  set.Meta.MaxInputTokens,
	}
	if set.Centroids != nil {
		snap.Centroids = set.Centroids
	}
	return snap
}

// Engine orchestrates classification. It is stateless over immutable
// shared artifacts and safe for unbounded concurrent callers.
type Engine struct {
	rules  service.RuleEvaluator
	source ModelSource
	cfg    Config
}

// New creates a fusion engine with the given dependencies.
func New(rules service.RuleEvaluator, source ModelSource, cfg Config) *Engine {
	return &Engine{
		rules:  rules,
		source: source,
		cfg:    cfg.sanitize(),
	}
}

// Classify runs the full decision state machine for one notification.
// It is a pure function of its input plus the currently loaded
// rule/model/centroid state.
func (e *Engine) Classify(ctx context.Context, raw string) (model.Decision, error) {
	if err := ctx.Err(); err != nil {
		return model.Decision{}, err
	}

	clean := normalize.Clean(raw)
	if clean == "" {
		// Empty input short-circuits; the classifier is never invoked.
		return model.Decision{
			Category:   model.FallbackCategory,
			Confidence: 0,
			Strategy:   model.StrategyFallback,
		}, nil
	}

	var trace []model.TraceEntry

	ruleVerdict := e.rules.Evaluate(raw, clean)
	if ruleVerdict.Matched() {
		trace = append(trace, model.TraceEntry{
			Stage:  model.TraceRule,
			Label:  ruleVerdict.Category,
			Score:  ruleVerdict.Confidence,
			Detail: strings.Join(ruleVerdict.MatchedTerms, ","),
		})
	}
	if ruleVerdict.Confidence >= e.cfg.RuleAccept {
		// Rule pre-emption is absolute: the classifier and centroid store
		// never get a say on unambiguous inputs.
		return model.Decision{
			Category:   ruleVerdict.Category,
			Confidence: ruleVerdict.Confidence,
			Strategy:   model.StrategyRule,
			Trace:      trace,
		}, nil
	}

	snap := e.source.Snapshot()
	if snap.Classifier == nil {
		return model.Decision{}, common.ErrModelUnavailable
	}

	input := truncateTokens(clean, snap.MaxTokens)

	clsVerdict, err := snap.Classifier.Predict(input)
	if err != nil {
		return model.Decision{}, fmt.Errorf("classifier stage: %w", err)
	}
	trace = append(trace, model.TraceEntry{
		Stage: model.TraceClassifier,
		Label: clsVerdict.TopCategory,
		Score: clsVerdict.TopProb,
	})

	if clsVerdict.TopProb >= e.cfg.MLAccept {
		return model.Decision{
			Category:   clsVerdict.TopCategory,
			Confidence: clsVerdict.TopProb,
			Strategy:   model.StrategyML,
			Trace:      trace,
		}, nil
	}

	centVerdict, err := e.nearestCentroid(snap, input)
	if err != nil {
		if !common.IsRecoverable(err) {
			return model.Decision{}, fmt.Errorf("centroid stage: %w", err)
		}
		slog.Debug("Centroid rescue unavailable", "error", err)
		return fallbackDecision(clsVerdict, trace), nil
	}
	trace = append(trace, model.TraceEntry{
		Stage: model.TraceCentroid,
		Label: centVerdict.Category,
		Score: centVerdict.Cosine,
	})

	if centVerdict.Cosine >= e.cfg.EmbedRescue {
		if decision, ok := e.hybridDecision(ruleVerdict, clsVerdict, centVerdict, trace); ok {
			return decision, nil
		}
	}

	return fallbackDecision(clsVerdict, trace), nil
}

// ClassifyBatch classifies many notifications, checking for cancellation
// between items.
func (e *Engine) ClassifyBatch(ctx context.Context, raws []string) ([]model.Decision, error) {
	decisions := make([]model.Decision, 0, len(raws))
	for _, raw := range raws {
		select {
		case <-ctx.Done():
			return decisions, ctx.Err()
		default:
		}
		decision, err := e.Classify(ctx, raw)
		if err != nil {
			return decisions, err
		}
		decisions = append(decisions, decision)
	}
	return decisions, nil
}

func (e *Engine) nearestCentroid(snap Snapshot, input string) (model.CentroidVerdict, error) {
	if snap.Centroids == nil {
		return model.CentroidVerdict{}, common.ErrNoCentroids
	}
	return snap.Centroids.NearestLabel(input)
}

// hybridDecision applies the tie-break policy between a weak classifier
// result and a plausible centroid match. When the two disagree, both
// candidates stay in the trace so the caller can surface the ambiguity.
func (e *Engine) hybridDecision(
	ruleVerdict model.RuleVerdict,
	clsVerdict model.ClassifierVerdict,
	centVerdict model.CentroidVerdict,
	trace []model.TraceEntry,
) (model.Decision, bool) {
	ruleConf := ruleVerdict.Confidence

	if centVerdict.Category == clsVerdict.TopCategory {
		confidence := 0.5*clsVerdict.TopProb + 0.3*centVerdict.Cosine + 0.2*ruleConf
		if confidence > 0.99 {
			confidence = 0.99
		}
		return model.Decision{
			Category:   centVerdict.Category,
			Confidence: confidence,
			Strategy:   model.StrategyHybrid,
			Trace:      trace,
		}, true
	}

	if centVerdict.Cosine >= clsVerdict.TopProb+e.cfg.HybridMargin {
		confidence := 0.6*centVerdict.Cosine + 0.2*clsVerdict.TopProb + 0.2*ruleConf
		if confidence > 0.95 {
			confidence = 0.95
		}
		return model.Decision{
			Category:   centVerdict.Category,
			Confidence: confidence,
			Strategy:   model.StrategyHybrid,
			Trace:      trace,
		}, true
	}

	return model.Decision{}, false
}

func fallbackDecision(clsVerdict model.ClassifierVerdict, trace []model.TraceEntry) model.Decision {
	return model.Decision{
		Category:   model.FallbackCategory,
		Confidence: clsVerdict.TopProb,
		Strategy:   model.StrategyFallback,
		Trace:      trace,
	}
}

// truncateTokens caps input at the training-time maximum length so
// inference reproduces training preprocessing exactly.
func truncateTokens(clean string, maxTokens int) string {
	if maxTokens <= 0 {
		return clean
	}
	fields := strings.Fields(clean)
	if len(fields) <= maxTokens {
		return clean
	}
	return strings.Join(fields[:maxTokens], " ")
}
