// Package classifier wraps the trained text classification model behind a
// small load/predict surface. Training happens offline in the training
// pipeline; at inference time the model is read-only and safe for
// unbounded concurrent callers.
package classifier

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jbrukh/bayesian"

	"github.com/transactai/transactai/internal/common"
	"github.com/transactai/transactai/internal/model"
)

// Model is a trained multinomial naive Bayes classifier with TF-IDF term
// weighting over normalized notification tokens.
type Model struct {
	cls    *bayesian.Classifier
	labels []string
}

// Train fits a model on the given examples. Fewer than two distinct
// labels or an empty dataset is a hard error, not recoverable mid-run.
func Train(examples []model.TrainingExample) (*Model, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("%w: empty dataset", common.ErrTrainingData)
	}

	seen := make(map[string]bool)
	var labels []string
	for _, ex := range examples {
		if ex.Label == "" || ex.CleanText == "" {
			continue
		}
		if !seen[ex.Label] {
			seen[ex.Label] = true
			labels = append(labels, ex.Label)
		}
	}
	if len(labels) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 distinct labels, got %d",
			common.ErrTrainingData, len(labels))
	}
	sort.Strings(labels)

	classes := make([]bayesian.Class, len(labels))
	for i, label := range labels {
		classes[i] = bayesian.Class(label)
	}

	cls := bayesian.NewClassifierTfIdf(classes...)
	for _, ex := range examples {
		if ex.Label == "" || ex.CleanText == "" {
			continue
		}
		cls.Learn(strings.Fields(ex.CleanText), bayesian.Class(ex.Label))
	}
	cls.ConvertTermsFreqToTfIdf()

	return &Model{cls: cls, labels: labels}, nil
}

// Predict returns the probability distribution over the trained label set
// for clean text. Read-only; callers may invoke it concurrently.
func (m *Model) Predict(clean string) (model.ClassifierVerdict, error) {
	if m == nil || m.cls == nil {
		return model.ClassifierVerdict{}, common.ErrModelUnavailable
	}

	tokens := strings.Fields(clean)
	scores, top, _, err := m.cls.SafeProbScores(tokens)
	if err != nil {
		return model.ClassifierVerdict{}, common.NewInferenceError("classifier", err)
	}

	verdict := model.ClassifierVerdict{
		Probabilities: make(map[string]float64, len(m.labels)),
	}
	for i, label := range m.labels {
		verdict.Probabilities[label] = scores[i]
	}
	verdict.TopCategory = m.labels[top]
	verdict.TopProb = scores[top]
	return verdict, nil
}

// Labels returns the trained label set in sorted order.
func (m *Model) Labels() []string {
	out := make([]string, len(m.labels))
	copy(out, m.labels)
	return out
}

// Save persists the trained model to path.
func (m *Model) Save(path string) error {
	if m == nil || m.cls == nil {
		return common.ErrModelUnavailable
	}
	if err := m.cls.WriteToFile(path); err != nil {
		return fmt.Errorf("failed to write classifier: %w", err)
	}
	return nil
}

// Load reads a trained model from path. The caller validates the label
// set against artifact metadata before serving.
func Load(path string) (*Model, error) {
	cls, err := bayesian.NewClassifierFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrModelUnavailable, err)
	}

	labels := make([]string, len(cls.Classes))
	for i, class := range cls.Classes {
		labels[i] = string(class)
	}
	return &Model{cls: cls, labels: labels}, nil
}
