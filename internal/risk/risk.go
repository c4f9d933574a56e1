package risk

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skufu/GoMaternal/internal/observation"
)

// ErrUnknownClass is returned for a class index outside the trained encoding.
var ErrUnknownClass = errors.New("unknown risk class")

// Label is the classifier output. The numeric values match the label
// encoding used at training time.
type Label int

const (
	Low Label = iota
	Mid
	High
)

// Labels lists every label in class order.
var Labels = [...]Label{Low, Mid, High}

func (l Label) String() string {
	switch l {
	case Low:
		return "Low Risk"
	case Mid:
		return "Mid Risk"
	case High:
		return "High Risk"
	}
	return fmt.Sprintf("Label(%d)", int(l))
}

// Class returns the integer the model uses for l.
func (l Label) Class() int { return int(l) }

// LabelFromClass maps a model class index to its label.
func LabelFromClass(class int) (Label, error) {
	switch Label(class) {
	case Low, Mid, High:
		return Label(class), nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownClass, class)
}

// Classifier is the trained model, consumed only through its predict call.
// features are laid out in observation.FeatureOrder().
type Classifier interface {
	Predict(ctx context.Context, features []float64) (int, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, features []float64) (int, error)

func (f ClassifierFunc) Predict(ctx context.Context, features []float64) (int, error) {
	return f(ctx, features)
}

type Assessment struct {
	Label       Label
	Observation observation.Observation
}

// Assess runs a single prediction. There is no retry and no fallback label.
func Assess(ctx context.Context, clf Classifier, obs observation.Observation) (Assessment, error) {
	class, err := clf.Predict(ctx, obs.Vector())
	if err != nil {
		return Assessment{}, fmt.Errorf("classify: %w", err)
	}
	label, err := LabelFromClass(class)
	if err != nil {
		return Assessment{}, fmt.Errorf("classify: %w", err)
	}
	return Assessment{Label: label, Observation: obs}, nil
}
