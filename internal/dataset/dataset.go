package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/samber/lo"
)

// RiskColumn holds the categorical label in the training data.
const RiskColumn = "RiskLevel"

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrEmptyDataset   = errors.New("dataset has no header")
)

// Table is a read-only snapshot of the training data, shown for reference only.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Count is the number of rows in one category.
type Count struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Loader reads the dataset once at startup.
type Loader interface {
	Load(ctx context.Context) (*Table, error)
}

// Column returns the index of name in the header.
func (t *Table) Column(name string) (int, error) {
	idx := slices.Index(t.Columns, name)
	if idx < 0 {
		return -1, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	return idx, nil
}

// Distribution counts rows per category of column, in first-seen order.
func (t *Table) Distribution(column string) ([]Count, error) {
	idx, err := t.Column(column)
	if err != nil {
		return nil, err
	}

	values := lo.FilterMap(t.Rows, func(row []string, _ int) (string, bool) {
		if idx >= len(row) {
			return "", false
		}
		return row[idx], true
	})
	counts := lo.CountValues(values)

	return lo.Map(lo.Uniq(values), func(cat string, _ int) Count {
		return Count{Category: cat, Count: counts[cat]}
	}), nil
}

// CSVLoader reads a dataset file with a header row.
type CSVLoader struct {
	Path string
}

func (l CSVLoader) Load(_ context.Context) (*Table, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", l.Path, err)
	}
	return t, nil
}

// ReadCSV parses CSV data whose first record is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	return &Table{Columns: records[0], Rows: records[1:]}, nil
}
