// Package model defines the core domain models used throughout the engine.
package model

// Strategy indicates which stage of the hybrid pipeline produced a decision.
type Strategy string

// Strategy constants.
const (
	// StrategyRule means a deterministic rule short-circuited classification.
	StrategyRule Strategy = "RULE"
	// StrategyML means the sequence classifier was confident on its own.
	StrategyML Strategy = "ML"
	// StrategyHybrid means the centroid fallback rescued or confirmed a weak
	// classifier result.
	StrategyHybrid Strategy = "HYBRID"
	// StrategyFallback means no signal cleared its bar.
	StrategyFallback Strategy = "FALLBACK"
)

// FallbackCategory is the reserved label used when no stage can commit to
// a real category. It is always considered registered.
const FallbackCategory = "Others"

// TraceStage identifies which pipeline stage a trace entry came from.
type TraceStage string

// Trace stage constants, in pipeline order.
const (
	TraceRule       TraceStage = "rule"
	TraceClassifier TraceStage = "classifier"
	TraceCentroid   TraceStage = "centroid"
)

// TraceEntry records one signal consulted while deciding. The trace is the
// mechanism by which callers present "did you mean" choices on ambiguous
// results, so entries must survive to the boundary intact.
type TraceEntry struct {
	Stage  TraceStage
	Label  string
	Score  float64
	Detail string
}

// Decision is the sole output artifact of the engine.
type Decision struct {
	Category   string
	Strategy   Strategy
	Trace      []TraceEntry
	Confidence float64
}

// Candidates returns the distinct labels present in the trace, in stage
// order. On a HYBRID decision this surfaces both the classifier's and the
// centroid's pick.
func (d Decision) Candidates() []string {
	seen := make(map[string]bool, len(d.Trace))
	var out []string
	for _, entry := range d.Trace {
		if entry.Label == "" || seen[entry.Label] {
			continue
		}
		seen[entry.Label] = true
		out = append(out, entry.Label)
	}
	return out
}

// RuleVerdict is the rule engine's answer for a single input. A zero-value
// verdict (confidence 0, empty category) means no rule matched.
type RuleVerdict struct {
	Category     string
	MatchedTerms []string
	Confidence   float64
	Score        float64
}

// Matched reports whether any rule fired at all.
func (v RuleVerdict) Matched() bool {
	return v.Category != "" && v.Confidence > 0
}

// ClassifierVerdict is the sequence classifier's probability distribution
// over the trained label set.
type ClassifierVerdict struct {
	Probabilities map[string]float64
	TopCategory   string
	TopProb       float64
}

// CentroidVerdict is the embedding fallback's nearest-label answer.
type CentroidVerdict struct {
	Category string
	Cosine   float64
}
