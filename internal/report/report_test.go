package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/GoMaternal/internal/observation"
)

func sampleLines() []observation.Line {
	return observation.Observation{Age: 25, SystolicBP: 120, DiastolicBP: 80, BS: 7.5, BodyTemp: 98.6, HeartRate: 75}.ReportLines()
}

// pdfText is how a single-line cell shows up in an uncompressed content stream.
func pdfText(s string) []byte {
	return []byte("(" + s + ")Tj")
}

func TestRenderLowRisk(t *testing.T) {
	pdf, err := NewGenerator().Render(sampleLines(), "Low Risk")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	assert.True(t, bytes.Contains(pdf, pdfText(Title)))
	assert.True(t, bytes.Contains(pdf, pdfText("Prediction Result: Low Risk")))
	assert.True(t, bytes.Contains(pdf, pdfText("Patient Input Data:")))

	want := []string{
		"Age: 25",
		"SystolicBP: 120.0",
		"DiastolicBP: 80.0",
		"Blood Sugar: 7.5",
		"Body Temperature: 98.6",
		"Heart Rate: 75.0",
	}
	last := bytes.Index(pdf, pdfText("Patient Input Data:"))
	for _, line := range want {
		idx := bytes.Index(pdf, pdfText(line))
		require.GreaterOrEqual(t, idx, 0, "missing %q", line)
		assert.Greater(t, idx, last, "%q out of order", line)
		last = idx
	}
}

func TestRenderHighRisk(t *testing.T) {
	pdf, err := NewGenerator().Render(sampleLines(), "High Risk")
	require.NoError(t, err)
	assert.True(t, bytes.Contains(pdf, pdfText("Prediction Result: High Risk")))
	assert.False(t, bytes.Contains(pdf, pdfText("Prediction Result: Low Risk")))
}

func TestRenderIsDeterministic(t *testing.T) {
	g := NewGenerator()
	first, err := g.Render(sampleLines(), "Mid Risk")
	require.NoError(t, err)
	second, err := g.Render(sampleLines(), "Mid Risk")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	third, err := NewGenerator().Render(sampleLines(), "Mid Risk")
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestRenderDocumentDate(t *testing.T) {
	a, err := NewGenerator().Render(sampleLines(), "Low Risk")
	require.NoError(t, err)
	b, err := NewGenerator(WithDocumentDate(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))).Render(sampleLines(), "Low Risk")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRenderFailureReturnsNothing(t *testing.T) {
	g := NewGenerator()
	g.font = "nosuchfont"
	pdf, err := g.Render(sampleLines(), "Low Risk")
	assert.Error(t, err)
	assert.Nil(t, pdf)
}

func TestDataURIRoundTrip(t *testing.T) {
	pdf, err := NewGenerator().Render(sampleLines(), "Low Risk")
	require.NoError(t, err)

	uri := DataURI(pdf)
	assert.Contains(t, uri, "data:application/pdf;base64,")

	decoded, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, pdf, decoded)
}

func TestDecodeDataURIRejectsMalformed(t *testing.T) {
	for _, uri := range []string{"", "data:text/plain;base64,AAAA", "data:application/pdf;base64,%%%"} {
		_, err := DecodeDataURI(uri)
		assert.ErrorIs(t, err, ErrMalformedDataURI, uri)
	}
}
