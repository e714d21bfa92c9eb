package fusion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transactai/transactai/internal/common"
	"github.com/transactai/transactai/internal/model"
)

type stubRules struct {
	verdict model.RuleVerdict
}

func (s stubRules) Evaluate(_, _ string) model.RuleVerdict { return s.verdict }

type stubClassifier struct {
	verdict model.ClassifierVerdict
	err     error
	calls   int
}

func (s *stubClassifier) Predict(_ string) (model.ClassifierVerdict, error) {
	s.calls++
	return s.verdict, s.err
}

type stubCentroids struct {
	verdict model.CentroidVerdict
	err     error
}

func (s stubCentroids) NearestLabel(_ string) (model.CentroidVerdict, error) {
	return s.verdict, s.err
}

type stubSource struct {
	snap Snapshot
}

func (s stubSource) Snapshot() Snapshot { return s.snap }

func newTestEngine(rules model.RuleVerdict, cls *stubClassifier, cent stubCentroids) *Engine {
	snap := Snapshot{MaxTokens: 64}
	if cls != nil {
		snap.Classifier = cls
	}
	snap.Centroids = cent
	return New(stubRules{verdict: rules}, stubSource{snap: snap}, DefaultConfig())
}

func classifierVerdict(top string, prob float64) model.ClassifierVerdict {
	return model.ClassifierVerdict{
		Probabilities: map[string]float64{top: prob},
		TopCategory:   top,
		TopProb:       prob,
	}
}

func TestClassifyRulePreemption(t *testing.T) {
	cls := &stubClassifier{verdict: classifierVerdict("Travel", 0.99)}
	engine := newTestEngine(
		model.RuleVerdict{Category: "Food", Confidence: 0.95, Score: 3.5, MatchedTerms: []string{"swiggy"}},
		cls,
		stubCentroids{verdict: model.CentroidVerdict{Category: "Travel", Cosine: 0.99}},
	)

	decision, err := engine.Classify(context.Background(), "paid to swiggy")
	require.NoError(t, err)
	assert.Equal(t, "Food", decision.Category)
	assert.Equal(t, model.StrategyRule, decision.Strategy)
	assert.InDelta(t, 0.95, decision.Confidence, 1e-9)
	assert.Zero(t, cls.calls, "rule pre-emption must not consult the classifier")
}

func TestClassifyMLAcceptBoundaryInclusive(t *testing.T) {
	cls := &stubClassifier{verdict: classifierVerdict("Bills", 0.70)}
	engine := newTestEngine(model.RuleVerdict{}, cls, stubCentroids{})

	decision, err := engine.Classify(context.Background(), "electricity bill paid")
	require.NoError(t, err)
	assert.Equal(t, "Bills", decision.Category)
	assert.Equal(t, model.StrategyML, decision.Strategy)
	assert.InDelta(t, 0.70, decision.Confidence, 1e-9)
}

func TestClassifyHybridAgreement(t *testing.T) {
	cls := &stubClassifier{verdict: classifierVerdict("Fuel", 0.55)}
	engine := newTestEngine(
		model.RuleVerdict{},
		cls,
		stubCentroids{verdict: model.CentroidVerdict{Category: "Fuel", Cosine: 0.80}},
	)

	decision, err := engine.Classify(context.Background(), "hpcl pump amt")
	require.NoError(t, err)
	assert.Equal(t, "Fuel", decision.Category)
	assert.Equal(t, model.StrategyHybrid, decision.Strategy)
	// 0.5*0.55 + 0.3*0.80 + 0.2*0
	assert.InDelta(t, 0.515, decision.Confidence, 1e-9)
}

func TestClassifyHybridCentroidOverridesWeakClassifier(t *testing.T) {
	cls := &stubClassifier{verdict: classifierVerdict("Food", 0.55)}
	engine := newTestEngine(
		model.RuleVerdict{},
		cls,
		stubCentroids{verdict: model.CentroidVerdict{Category: "Fuel", Cosine: 0.80}},
	)

	decision, err := engine.Classify(context.Background(), "hpcl pump amt")
	require.NoError(t, err)
	assert.Equal(t, "Fuel", decision.Category)
	assert.Equal(t, model.StrategyHybrid, decision.Strategy)
	// 0.6*0.80 + 0.2*0.55 + 0.2*0
	assert.InDelta(t, 0.59, decision.Confidence, 1e-9)

	// Both candidates survive in the trace for "did you mean".
	assert.Contains(t, decision.Candidates(), "Food")
	assert.Contains(t, decision.Candidates(), "Fuel")
}

func TestClassifyHybridMarginNotMet(t *testing.T) {
	cls := &stubClassifier{verdict: classifierVerdict("Food", 0.55)}
	engine := newTestEngine(
		model.RuleVerdict{},
		cls,
		stubCentroids{verdict: model.CentroidVerdict{Category: "Fuel", Cosine: 0.60}},
	)

	decision, err := engine.Classify(context.Background(), "ambiguous text")
	require.NoError(t, err)
	assert.Equal(t, model.FallbackCategory, decision.Category)
	assert.Equal(t, model.StrategyFallback, decision.Strategy)
}

func TestClassifyFallbackOnWeakSignals(t *testing.T) {
	cls := &stubClassifier{verdict: classifierVerdict("Food", 0.40)}
	engine := newTestEngine(
		model.RuleVerdict{},
		cls,
		stubCentroids{verdict: model.CentroidVerdict{Category: "Food", Cosine: 0.50}},
	)

	decision, err := engine.Classify(context.Background(), "qwerty asdf")
	require.NoError(t, err)
	assert.Equal(t, model.FallbackCategory, decision.Category)
	assert.Equal(t, model.StrategyFallback, decision.Strategy)
	assert.InDelta(t, 0.40, decision.Confidence, 1e-9)
}

func TestClassifyEmptyInput(t *testing.T) {
	cls := &stubClassifier{verdict: classifierVerdict("Food", 0.99)}
	engine := newTestEngine(model.RuleVerdict{}, cls, stubCentroids{})

	for _, raw := range []string{"", "   ", "!!! ---"} {
		decision, err := engine.Classify(context.Background(), raw)
		require.NoError(t, err)
		assert.Equal(t, model.FallbackCategory, decision.Category)
		assert.Equal(t, model.StrategyFallback, decision.Strategy)
		assert.Zero(t, decision.Confidence)
	}
	assert.Zero(t, cls.calls, "empty input must never reach the classifier")
}

func TestClassifyNoModelLoaded(t *testing.T) {
	engine := New(stubRules{}, stubSource{}, DefaultConfig())

	_, err := engine.Classify(context.Background(), "some text")
	assert.True(t, errors.Is(err, common.ErrModelUnavailable))
}

func TestClassifyNoCentroidsFallsBack(t *testing.T) {
	cls := &stubClassifier{verdict: classifierVerdict("Food", 0.40)}
	engine := newTestEngine(
		model.RuleVerdict{},
		cls,
		stubCentroids{err: common.ErrNoCentroids},
	)

	decision, err := engine.Classify(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, model.FallbackCategory, decision.Category)
	assert.Equal(t, model.StrategyFallback, decision.Strategy)
}

func TestClassifyCentroidHardErrorPropagates(t *testing.T) {
	cls := &stubClassifier{verdict: classifierVerdict("Food", 0.40)}
	boom := common.NewInferenceError("centroid", errors.New("corrupt vector"))
	engine := newTestEngine(model.RuleVerdict{}, cls, stubCentroids{err: boom})

	_, err := engine.Classify(context.Background(), "some text")
	require.Error(t, err)
	var infErr *common.InferenceError
	assert.True(t, errors.As(err, &infErr))
}

func TestClassifyClassifierErrorPropagates(t *testing.T) {
	cls := &stubClassifier{err: common.NewInferenceError("classifier", errors.New("underflow"))}
	engine := newTestEngine(model.RuleVerdict{}, cls, stubCentroids{})

	_, err := engine.Classify(context.Background(), "some text")
	require.Error(t, err)
}

func TestClassifyIdempotent(t *testing.T) {
	cls := &stubClassifier{verdict: classifierVerdict("Fuel", 0.55)}
	engine := newTestEngine(
		model.RuleVerdict{},
		cls,
		stubCentroids{verdict: model.CentroidVerdict{Category: "Fuel", Cosine: 0.80}},
	)

	first, err := engine.Classify(context.Background(), "hpcl pump amt")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		got, err := engine.Classify(context.Background(), "hpcl pump amt")
		require.NoError(t, err)
		assert.Equal(t, first.Category, got.Category)
		assert.Equal(t, first.Strategy, got.Strategy)
		assert.Equal(t, first.Confidence, got.Confidence)
	}
}

func TestClassifyConfidenceBounds(t *testing.T) {
	tests := []struct {
		name string
		cls  model.ClassifierVerdict
		cent model.CentroidVerdict
		rule model.RuleVerdict
	}{
		{
			name: "hybrid agreement near saturation",
			cls:  classifierVerdict("Food", 0.69),
			cent: model.CentroidVerdict{Category: "Food", Cosine: 0.99},
			rule: model.RuleVerdict{Category: "Food", Confidence: 0.89, Score: 3},
		},
		{
			name: "weak everything",
			cls:  classifierVerdict("Food", 0.10),
			cent: model.CentroidVerdict{Category: "Travel", Cosine: 0.20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(tt.rule, &stubClassifier{verdict: tt.cls}, stubCentroids{verdict: tt.cent})
			decision, err := engine.Classify(context.Background(), "some text")
			require.NoError(t, err)
			assert.GreaterOrEqual(t, decision.Confidence, 0.0)
			assert.LessOrEqual(t, decision.Confidence, 1.0)
		})
	}
}

func TestClassifyBatchStopsOnCancel(t *testing.T) {
	cls := &stubClassifier{verdict: classifierVerdict("Food", 0.90)}
	engine := newTestEngine(model.RuleVerdict{}, cls, stubCentroids{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	decisions, err := engine.ClassifyBatch(ctx, []string{"a", "b", "c"})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, decisions)
}

func TestClassifyBatchOrderPreserved(t *testing.T) {
	cls := &stubClassifier{verdict: classifierVerdict("Food", 0.90)}
	engine := newTestEngine(
		model.RuleVerdict{},
		cls,
		stubCentroids{},
	)

	decisions, err := engine.ClassifyBatch(context.Background(), []string{"swiggy order", "", "zomato order"})
	require.NoError(t, err)
	require.Len(t, decisions, 3)
	assert.Equal(t, model.StrategyML, decisions[0].Strategy)
	assert.Equal(t, model.StrategyFallback, decisions[1].Strategy)
	assert.Equal(t, model.StrategyML, decisions[2].Strategy)
}
