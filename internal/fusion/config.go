package fusion

// Config holds the fusion thresholds. These are configuration, not
// constants: callers feed them from their config layer so each can be
// tuned without touching the decision algorithm.
type Config struct {
	// RuleAccept is the confidence a rule verdict needs to short-circuit
	// the pipeline.
	RuleAccept float64
	// MLAccept is the classifier top probability accepted outright.
	// The boundary is inclusive.
	MLAccept float64
	// EmbedRescue is the minimum cosine similarity for the centroid
	// fallback to participate at all.
	EmbedRescue float64
	// HybridMargin is how far the centroid's cosine must exceed the
	// classifier's disagreeing top probability to win the HYBRID verdict.
	HybridMargin float64
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		RuleAccept:   0.90,
		MLAccept:     0.70,
		EmbedRescue:  0.60,
		HybridMargin: 0.10,
	}
}

// sanitize fills unset thresholds with defaults so a partially populated
// config never disables a stage by accident.
func (c Config) sanitize() Config {
	def := DefaultConfig()
	if c.RuleAccept <= 0 {
		c.RuleAccept = def.RuleAccept
	}
	if c.MLAccept <= 0 {
		c.MLAccept = def.MLAccept
	}
	if c.EmbedRescue <= 0 {
		c.EmbedRescue = def.EmbedRescue
	}
	if c.HybridMargin <= 0 {
		c.HybridMargin = def.HybridMargin
	}
	return c
}
