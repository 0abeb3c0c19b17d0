package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"

	"muhurta/internal/domain"
)

func testChart() domain.ParsedChart {
	return domain.ParsedChart{
		NatalNakshatra: "Visa",
		Lagna:          "Sc",
		NatalMoonRasi:  "Sc",
		PlanetHouses:   map[domain.Planet]int{domain.PlanetSaturn: 7},
	}
}

func chartJSON(t *testing.T) []byte {
	t.Helper()
	raw, err := json.Marshal(testChart())
	if err != nil {
		t.Fatalf("marshal chart: %v", err)
	}
	return raw
}

func TestInsertChartReturnsRecord(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	pool := &stubPool{queryRowData: []any{now}}
	repo := NewChartRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	rec, err := repo.InsertChart(context.Background(), "my chart", testChart())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected generated id")
	}
	if rec.Label != "my chart" {
		t.Fatalf("label = %q", rec.Label)
	}
	if !rec.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", rec.CreatedAt, now)
	}
	if rec.Chart.Lagna != "Sc" {
		t.Fatalf("chart not carried: %+v", rec.Chart)
	}
}

func TestGetChartFound(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	pool := &stubPool{queryRowData: []any{"abc-123", "label", chartJSON(t), now}}
	repo := NewChartRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	rec, err := repo.GetChart(context.Background(), "abc-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil {
		t.Fatal("expected record, got nil")
	}
	if rec.ID != "abc-123" || rec.Chart.NatalNakshatra != "Visa" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestGetChartNotFound(t *testing.T) {
	pool := &stubPool{queryRowErr: pgx.ErrNoRows}
	repo := NewChartRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	rec, err := repo.GetChart(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %+v", rec)
	}
}

func TestListChartsDecodesRows(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	pool := &stubPool{
		rowsData: [][]any{
			{"id-1", "first", chartJSON(t), now},
			{"id-2", "second", chartJSON(t), now},
		},
	}
	repo := NewChartRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	records, err := repo.ListCharts(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].ID != "id-2" {
		t.Fatalf("unexpected ordering: %+v", records)
	}
}

func TestDeleteChartReportsAffected(t *testing.T) {
	pool := &stubPool{execTag: pgconn.NewCommandTag("DELETE 1")}
	repo := NewChartRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	ok, err := repo.DeleteChart(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected delete to report an affected row")
	}

	pool.execTag = pgconn.NewCommandTag("DELETE 0")
	ok, err = repo.DeleteChart(context.Background(), "id-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected delete of unknown id to report no rows")
	}
}

func TestUpsertDayScoresBatches(t *testing.T) {
	pool := &stubPool{}
	repo := NewChartRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	scores := []domain.DayScore{
		{Date: "2024-05-20", TotalIndex: 80, Signal: domain.SignalGreen},
		{Date: "2024-05-21", TotalIndex: 55, Signal: domain.SignalRed},
	}
	if err := repo.UpsertDayScores(context.Background(), "id-1", scores); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.batchLen != 2 {
		t.Fatalf("expected 2 queued statements, got %d", pool.batchLen)
	}
}

func TestUpsertDayScoresEmptyNoop(t *testing.T) {
	pool := &stubPool{}
	repo := NewChartRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))
	if err := repo.UpsertDayScores(context.Background(), "id-1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.batchLen != 0 {
		t.Fatal("empty upsert must not send a batch")
	}
}

func TestGetDayScoreMiss(t *testing.T) {
	pool := &stubPool{queryRowErr: pgx.ErrNoRows}
	repo := NewChartRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	ds, err := repo.GetDayScore(context.Background(), "id-1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds != nil {
		t.Fatalf("expected nil score, got %+v", ds)
	}
}

func TestListDayScoresDecodes(t *testing.T) {
	raw, _ := json.Marshal(domain.DayScore{Date: "2024-05-20", TotalIndex: 80, Signal: domain.SignalGreen})
	pool := &stubPool{rowsData: [][]any{{raw}}}
	repo := NewChartRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	from := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	scores, err := repo.ListDayScores(context.Background(), "id-1", from, from.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 1 || scores[0].TotalIndex != 80 {
		t.Fatalf("unexpected scores: %+v", scores)
	}
}

func TestRunMigrationsExecutesAllStatements(t *testing.T) {
	pool := &stubPool{}
	repo := NewChartRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))
	if err := repo.RunMigrations(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.execCount != len(migrations) {
		t.Fatalf("expected %d statements, got %d", len(migrations), pool.execCount)
	}
}

// --- stubs ---

type stubPool struct {
	execTag      pgconn.CommandTag
	execCount    int
	queryRowData []any
	queryRowErr  error
	rowsData     [][]any
	batchLen     int
}

func (s *stubPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.execCount++
	return s.execTag, nil
}

func (s *stubPool) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	s.batchLen = b.Len()
	return &stubBatchResults{}
}

func (s *stubPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	dataCopy := make([][]any, len(s.rowsData))
	for i := range s.rowsData {
		row := make([]any, len(s.rowsData[i]))
		copy(row, s.rowsData[i])
		dataCopy[i] = row
	}
	return &stubRows{data: dataCopy}, nil
}

func (s *stubPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return &stubRow{data: s.queryRowData, err: s.queryRowErr}
}

type stubBatchResults struct{}

func (stubBatchResults) Exec() (pgconn.CommandTag, error) { return pgconn.CommandTag{}, nil }
func (stubBatchResults) Query() (pgx.Rows, error)         { return &stubRows{}, nil }
func (stubBatchResults) QueryRow() pgx.Row                { return &stubRow{} }
func (stubBatchResults) Close() error                     { return nil }

type stubRows struct {
	data [][]any
	idx  int
}

func (r *stubRows) Close()                                       {}
func (r *stubRows) Err() error                                   { return nil }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (r *stubRows) Next() bool {
	if len(r.data) == 0 || r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.data) {
		return fmt.Errorf("invalid scan index")
	}
	return scanInto(r.data[r.idx-1], dest)
}

func (r *stubRows) Values() ([]any, error) { return nil, nil }
func (r *stubRows) RawValues() [][]byte    { return nil }
func (r *stubRows) Conn() *pgx.Conn        { return nil }

type stubRow struct {
	data []any
	err  error
}

func (r *stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.data == nil {
		return pgx.ErrNoRows
	}
	return scanInto(r.data, dest)
}

func scanInto(row []any, dest []any) error {
	for i, d := range dest {
		switch ptr := d.(type) {
		case *string:
			*ptr = row[i].(string)
		case *[]byte:
			*ptr = row[i].([]byte)
		case *time.Time:
			*ptr = row[i].(time.Time)
		default:
			return fmt.Errorf("unsupported dest type %T", d)
		}
	}
	return nil
}
