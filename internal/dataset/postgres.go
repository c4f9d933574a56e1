package dataset

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
)

// Querier is the subset of pgxpool.Pool the loader needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresLoader reads the dataset from a table.
type PostgresLoader struct {
	DB    Querier
	Table string
}

func (l PostgresLoader) Load(ctx context.Context) (*Table, error) {
	query := "SELECT * FROM " + pgx.Identifier{l.Table}.Sanitize()
	rows, err := l.DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query dataset: %w", err)
	}
	defer rows.Close()

	t := &Table{
		Columns: lo.Map(rows.FieldDescriptions(), func(fd pgconn.FieldDescription, _ int) string {
			return fd.Name
		}),
	}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan dataset row: %w", err)
		}
		t.Rows = append(t.Rows, lo.Map(values, func(v any, _ int) string {
			if v == nil {
				return ""
			}
			return fmt.Sprint(v)
		}))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read dataset rows: %w", err)
	}
	return t, nil
}
