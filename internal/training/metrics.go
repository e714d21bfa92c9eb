package training

import (
	"github.com/transactai/transactai/internal/artifact"
)

// computeMetrics builds accuracy, macro F1, support-weighted F1, and
// per-label precision/recall/F1 from parallel truth/prediction slices.
func computeMetrics(yTrue, yPred []string) artifact.Metrics {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return artifact.Metrics{}
	}

	type counts struct {
		tp, fp, fn, support int
	}
	byLabel := make(map[string]*counts)
	get := func(label string) *counts {
		c, ok := byLabel[label]
		if !ok {
			c = &counts{}
			byLabel[label] = c
		}
		return c
	}

	correct := 0
	for i := range yTrue {
		truth := get(yTrue[i])
		truth.support++
		if yPred[i] == yTrue[i] {
			correct++
			truth.tp++
		} else {
			truth.fn++
			get(yPred[i]).fp++
		}
	}

	metrics := artifact.Metrics{
		Accuracy: float64(correct) / float64(len(yTrue)),
		PerLabel: make(map[string]artifact.LabelMetrics, len(byLabel)),
	}

	var macroSum, weightedSum float64
	labelCount := 0
	for label, c := range byLabel {
		var precision, recall, f1 float64
		if c.tp+c.fp > 0 {
			precision = float64(c.tp) / float64(c.tp+c.fp)
		}
		if c.tp+c.fn > 0 {
			recall = float64(c.tp) / float64(c.tp+c.fn)
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		metrics.PerLabel[label] = artifact.LabelMetrics{
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   c.support,
		}
		if c.support > 0 {
			macroSum += f1
			weightedSum += f1 * float64(c.support)
			labelCount++
		}
	}
	if labelCount > 0 {
		metrics.MacroF1 = macroSum / float64(labelCount)
	}
	metrics.WeightedF1 = weightedSum / float64(len(yTrue))

	return metrics
}
