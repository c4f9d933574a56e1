package risk

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/GoMaternal/internal/observation"
)

type captureClassifier struct {
	class int
	err   error
	calls [][]float64
}

func (c *captureClassifier) Predict(_ context.Context, features []float64) (int, error) {
	c.calls = append(c.calls, append([]float64(nil), features...))
	return c.class, c.err
}

func sample() observation.Observation {
	return observation.Observation{Age: 25, SystolicBP: 120, DiastolicBP: 80, BS: 7.5, BodyTemp: 98.6, HeartRate: 75}
}

func TestLabelFromClass(t *testing.T) {
	cases := map[int]string{0: "Low Risk", 1: "Mid Risk", 2: "High Risk"}
	for class, want := range cases {
		label, err := LabelFromClass(class)
		require.NoError(t, err)
		assert.Equal(t, want, label.String())
		assert.Equal(t, class, label.Class())
	}

	for _, class := range []int{-1, 3, 42} {
		_, err := LabelFromClass(class)
		assert.ErrorIs(t, err, ErrUnknownClass, "class %d", class)
	}
}

func TestAssessPassesFeatureOrder(t *testing.T) {
	clf := &captureClassifier{class: 0}
	a, err := Assess(context.Background(), clf, sample())
	require.NoError(t, err)

	require.Len(t, clf.calls, 1)
	assert.Equal(t, []float64{25, 120, 80, 7.5, 98.6, 75}, clf.calls[0])
	assert.Equal(t, Low, a.Label)
	assert.Equal(t, sample(), a.Observation)
}

func TestAssessHigh(t *testing.T) {
	a, err := Assess(context.Background(), &captureClassifier{class: 2}, sample())
	require.NoError(t, err)
	assert.Equal(t, "High Risk", a.Label.String())
}

func TestAssessClassifierFailure(t *testing.T) {
	boom := errors.New("bad input shape")
	clf := &captureClassifier{err: boom}

	a, err := Assess(context.Background(), clf, sample())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Assessment{}, a)

	clf.err = nil
	clf.class = 1
	a, err = Assess(context.Background(), clf, sample())
	require.NoError(t, err)
	assert.Equal(t, Mid, a.Label)
	assert.Len(t, clf.calls, 2)
}

func TestAssessRejectsOutOfDomainClass(t *testing.T) {
	clf := ClassifierFunc(func(context.Context, []float64) (int, error) { return 7, nil })
	_, err := Assess(context.Background(), clf, sample())
	assert.ErrorIs(t, err, ErrUnknownClass)
}
