package report

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/Skufu/GoMaternal/internal/observation"
)

const (
	// DownloadName is the file name offered to the browser.
	DownloadName = "Maternal_Health_Report.pdf"
	MediaType    = "application/pdf"

	Title         = "Maternal Health Risk Prediction Report"
	SectionHeader = "Patient Input Data:"

	dataURIPrefix = "data:" + MediaType + ";base64,"
)

var ErrMalformedDataURI = errors.New("malformed report data uri")

// documentDate pins the PDF info dates so identical inputs give identical bytes.
var documentDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type Generator struct {
	font string
	date time.Time
}

type Option func(*Generator)

// WithDocumentDate overrides the creation and modification dates.
func WithDocumentDate(t time.Time) Option {
	return func(g *Generator) { g.date = t }
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{font: "Arial", date: documentDate}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ResultLine is the text of the prediction line.
func ResultLine(label string) string {
	return "Prediction Result: " + label
}

// Render lays out a single-page report and returns the PDF bytes. Each call
// writes to its own buffer; nothing is returned on failure.
func (g *Generator) Render(lines []observation.Line, label string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(g.date)
	pdf.SetModificationDate(g.date)
	pdf.SetTitle(Title, true)
	pdf.SetCreator("GoMaternal", true)

	pdf.AddPage()
	pdf.SetFont(g.font, "B", 16)
	pdf.CellFormat(200, 10, Title, "", 1, "C", false, 0, "")

	pdf.SetFont(g.font, "", 12)
	pdf.Ln(10)
	pdf.CellFormat(200, 10, ResultLine(label), "", 1, "", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont(g.font, "B", 12)
	pdf.CellFormat(200, 10, SectionHeader, "", 1, "", false, 0, "")

	pdf.SetFont(g.font, "", 12)
	for _, l := range lines {
		pdf.CellFormat(200, 10, fmt.Sprintf("%s: %s", l.Name, l.Value), "", 1, "", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI embeds a document in a self-contained link target.
func DataURI(pdf []byte) string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString(pdf)
}

// DecodeDataURI is the inverse of DataURI.
func DecodeDataURI(uri string) ([]byte, error) {
	payload, ok := strings.CutPrefix(uri, dataURIPrefix)
	if !ok {
		return nil, ErrMalformedDataURI
	}
	out, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataURI, err)
	}
	return out, nil
}
