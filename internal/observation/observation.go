package observation

import (
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Column names as the model was trained on them.
const (
	ColAge         = "Age"
	ColSystolicBP  = "SystolicBP"
	ColDiastolicBP = "DiastolicBP"
	ColBS          = "BS"
	ColBodyTemp    = "BodyTemp"
	ColHeartRate   = "HeartRate"
)

// featureOrder is the column order the classifier expects. Vector and every
// caller that talks to a model must go through it.
var featureOrder = [...]string{
	ColAge,
	ColSystolicBP,
	ColDiastolicBP,
	ColBS,
	ColBodyTemp,
	ColHeartRate,
}

// NumFeatures is the length of a classifier input vector.
const NumFeatures = len(featureOrder)

// FeatureOrder returns a copy of the column order the classifier expects.
func FeatureOrder() []string {
	return slices.Clone(featureOrder[:])
}

type Field struct {
	Column     string
	Label      string
	ReportName string
	Unit       string
	Min        float64
	Max        float64
	Step       float64
	Integer    bool
}

// fields holds the input bounds, indexed in featureOrder.
var fields = [NumFeatures]Field{
	{Column: ColAge, Label: "Age", ReportName: "Age", Min: 10, Max: 70, Step: 1, Integer: true},
	{Column: ColSystolicBP, Label: "Systolic Blood Pressure", ReportName: "SystolicBP", Unit: "mmHg", Min: 80, Max: 200, Step: 0.1},
	{Column: ColDiastolicBP, Label: "Diastolic Blood Pressure", ReportName: "DiastolicBP", Unit: "mmHg", Min: 40, Max: 130, Step: 0.1},
	{Column: ColBS, Label: "Blood Sugar", ReportName: "Blood Sugar", Unit: "mg/dL", Min: 1, Max: 30, Step: 0.1},
	{Column: ColBodyTemp, Label: "Body Temperature", ReportName: "Body Temperature", Unit: "°F", Min: 90, Max: 110, Step: 0.1},
	{Column: ColHeartRate, Label: "Heart Rate", ReportName: "Heart Rate", Unit: "bpm", Min: 40, Max: 150, Step: 0.1},
}

// Fields returns a copy of the input bounds, in FeatureOrder.
func Fields() []Field {
	return slices.Clone(fields[:])
}

// Clamp bounds v to the field range. Integer fields are rounded.
func (f Field) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return f.Min
	}
	if f.Integer {
		v = math.Round(v)
	}
	return math.Min(math.Max(v, f.Min), f.Max)
}

// Observation is one set of measurements submitted for prediction.
type Observation struct {
	Age         int     `json:"age"`
	SystolicBP  float64 `json:"systolicBP"`
	DiastolicBP float64 `json:"diastolicBP"`
	BS          float64 `json:"bs"`
	BodyTemp    float64 `json:"bodyTemp"`
	HeartRate   float64 `json:"heartRate"`
}

// Line is a single "name: value" entry of a rendered report.
type Line struct {
	Name  string
	Value string
}

// Default returns the observation a freshly rendered form starts from.
func Default() Observation {
	var o Observation
	for _, f := range fields {
		o = o.with(f.Column, f.Min)
	}
	return o
}

// FromForm reads each field by column name. Missing or unparseable values
// fall back to the field minimum; everything is clamped to its range.
func FromForm(get func(key string) string) Observation {
	var o Observation
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(get(f.Column)), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			v = f.Min
		}
		o = o.with(f.Column, f.Clamp(v))
	}
	return o
}

// Clamp returns a copy with every field bounded to its range.
func (o Observation) Clamp() Observation {
	out := o
	for _, f := range fields {
		out = out.with(f.Column, f.Clamp(o.Value(f.Column)))
	}
	return out
}

// Value returns the field for a column name, or NaN for an unknown column.
func (o Observation) Value(column string) float64 {
	switch column {
	case ColAge:
		return float64(o.Age)
	case ColSystolicBP:
		return o.SystolicBP
	case ColDiastolicBP:
		return o.DiastolicBP
	case ColBS:
		return o.BS
	case ColBodyTemp:
		return o.BodyTemp
	case ColHeartRate:
		return o.HeartRate
	}
	return math.NaN()
}

func (o Observation) with(column string, v float64) Observation {
	switch column {
	case ColAge:
		o.Age = int(math.Round(v))
	case ColSystolicBP:
		o.SystolicBP = v
	case ColDiastolicBP:
		o.DiastolicBP = v
	case ColBS:
		o.BS = v
	case ColBodyTemp:
		o.BodyTemp = v
	case ColHeartRate:
		o.HeartRate = v
	}
	return o
}

// Vector lays the observation out in FeatureOrder.
func (o Observation) Vector() []float64 {
	vec := make([]float64, 0, NumFeatures)
	for _, col := range featureOrder {
		vec = append(vec, o.Value(col))
	}
	return vec
}

// ReportLines returns the fields as report entries, in FeatureOrder.
func (o Observation) ReportLines() []Line {
	lines := make([]Line, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, Line{Name: f.ReportName, Value: f.Format(o.Value(f.Column))})
	}
	return lines
}

// Format prints integers bare and floats with at least one decimal.
func (f Field) Format(v float64) string {
	if f.Integer {
		return strconv.Itoa(int(math.Round(v)))
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
