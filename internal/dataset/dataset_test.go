package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Age,SystolicBP,DiastolicBP,BS,BodyTemp,HeartRate,RiskLevel
25,130,80,15,98,86,high risk
35,140,90,13,98,70,high risk
29,90,70,8,100,80,high risk
30,140,85,7,98,70,high risk
35,120,60,6.1,98,76,low risk
23,140,80,7.01,98,70,high risk
23,130,70,7.01,98,78,mid risk
`

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, []string{"Age", "SystolicBP", "DiastolicBP", "BS", "BodyTemp", "HeartRate", "RiskLevel"}, tbl.Columns)
	assert.Len(t, tbl.Rows, 7)

	_, err = ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestDistributionFirstSeenOrder(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	counts, err := tbl.Distribution(RiskColumn)
	require.NoError(t, err)
	assert.Equal(t, []Count{
		{Category: "high risk", Count: 5},
		{Category: "low risk", Count: 1},
		{Category: "mid risk", Count: 1},
	}, counts)

	_, err = tbl.Distribution("Outcome")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestDistributionSkipsShortRows(t *testing.T) {
	tbl := &Table{Columns: []string{"A", "RiskLevel"}, Rows: [][]string{{"1", "low risk"}, {"2"}}}
	counts, err := tbl.Distribution(RiskColumn)
	require.NoError(t, err)
	assert.Equal(t, []Count{{Category: "low risk", Count: 1}}, counts)
}

func TestCSVLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maternal_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	tbl, err := CSVLoader{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 7)

	_, err = CSVLoader{Path: filepath.Join(t.TempDir(), "missing.csv")}.Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type fakeRows struct {
	fields []pgconn.FieldDescription
	data   [][]any
	pos    int
	err    error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }
func (r *fakeRows) Scan(...any) error                            { return errors.New("not implemented") }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.data[r.pos-1], nil
}

type fakeQuerier struct {
	rows  pgx.Rows
	err   error
	query string
}

func (q *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.query = sql
	return q.rows, q.err
}

func TestPostgresLoader(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{
		fields: []pgconn.FieldDescription{{Name: "Age"}, {Name: "BS"}, {Name: "RiskLevel"}},
		data: [][]any{
			{int32(25), 7.5, "low risk"},
			{int32(40), nil, "high risk"},
		},
	}}

	tbl, err := PostgresLoader{DB: q, Table: "maternal_health"}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "maternal_health"`, q.query)
	assert.Equal(t, []string{"Age", "BS", "RiskLevel"}, tbl.Columns)
	assert.Equal(t, [][]string{{"25", "7.5", "low risk"}, {"40", "", "high risk"}}, tbl.Rows)
}

func TestPostgresLoaderErrors(t *testing.T) {
	boom := errors.New("relation does not exist")
	_, err := PostgresLoader{DB: &fakeQuerier{err: boom}, Table: "missing"}.Load(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = PostgresLoader{DB: &fakeQuerier{rows: &fakeRows{err: boom}}, Table: "t"}.Load(context.Background())
	assert.ErrorIs(t, err, boom)
}
