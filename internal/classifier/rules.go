package classifier

import (
	"context"
	"fmt"

	"github.com/Skufu/GoMaternal/internal/observation"
)

type severity string

const (
	sevLow    severity = "LOW"
	sevMedium severity = "MEDIUM"
	sevHigh   severity = "HIGH"
)

var severityWeight = map[severity]int{
	sevHigh:   40,
	sevMedium: 20,
	sevLow:    10,
}

// Finding is one threshold crossed by an observation.
type Finding struct {
	Factor   string
	Severity string
}

// Rules is an offline screening heuristic usable in place of a model server
// for demos and smoke tests. It answers with the same class encoding.
type Rules struct{}

func (Rules) Predict(_ context.Context, features []float64) (int, error) {
	if len(features) != observation.NumFeatures {
		return 0, fmt.Errorf("expected %d features, got %d", observation.NumFeatures, len(features))
	}
	class, _ := Evaluate(features)
	return class, nil
}

// Evaluate scores a feature vector laid out in observation.FeatureOrder().
func Evaluate(features []float64) (int, []Finding) {
	age := features[0]
	bpSys := features[1]
	bpDia := features[2]
	bs := features[3]
	temp := features[4]
	hr := features[5]

	findings := []Finding{}
	add := func(factor string, sev severity) {
		findings = append(findings, Finding{Factor: factor, Severity: string(sev)})
	}

	if bpSys >= 160 || bpDia >= 110 {
		add("Severe hypertension", sevHigh)
	} else if bpSys >= 140 || bpDia >= 90 {
		add("Elevated blood pressure", sevMedium)
	} else if bpSys < 90 || bpDia < 60 {
		add("Low blood pressure", sevLow)
	}

	if bs >= 11 {
		add("Hyperglycaemia", sevHigh)
	} else if bs >= 7.8 {
		add("Raised blood sugar", sevMedium)
	}

	if temp >= 102 {
		add("High fever", sevHigh)
	} else if temp >= 100.4 {
		add("Fever", sevMedium)
	}

	if hr >= 120 || hr < 50 {
		add("Abnormal heart rate", sevMedium)
	} else if hr >= 100 {
		add("Tachycardia", sevLow)
	}

	if age >= 40 || age < 18 {
		add("Maternal age", sevLow)
	}

	maxSeverity := sevLow
	score := 0
	for _, f := range findings {
		s := severity(f.Severity)
		score += severityWeight[s]
		if s == sevHigh {
			maxSeverity = sevHigh
		} else if s == sevMedium && maxSeverity == sevLow {
			maxSeverity = sevMedium
		}
	}

	switch {
	case maxSeverity == sevHigh || score >= 60:
		return 2, findings
	case maxSeverity == sevMedium || score >= 30:
		return 1, findings
	}
	return 0, findings
}
