package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"

	"muhurta/internal/domain"
)

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ChartRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewChartRepository(pool PgxPool, tracer trace.Tracer) *ChartRepository {
	return &ChartRepository{pool: pool, tracer: tracer}
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS charts (
		id         UUID PRIMARY KEY,
		label      TEXT NOT NULL DEFAULT '',
		chart      JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS day_scores (
		chart_id   UUID NOT NULL REFERENCES charts(id) ON DELETE CASCADE,
		score_date DATE NOT NULL,
		score      JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (chart_id, score_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_day_scores_date ON day_scores (score_date)`,
}

// RunMigrations creates the tables on first boot; every statement is
// idempotent so repeated boots are safe.
func (r *ChartRepository) RunMigrations(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "chart-repo.run-migrations")
	defer span.End()

	for _, stmt := range migrations {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *ChartRepository) InsertChart(ctx context.Context, label string, chart domain.ParsedChart) (*domain.ChartRecord, error) {
	_, span := r.tracer.Start(ctx, "chart-repo.insert-chart")
	defer span.End()

	raw, err := json.Marshal(chart)
	if err != nil {
		return nil, err
	}

	rec := &domain.ChartRecord{
		ID:    uuid.NewString(),
		Label: label,
		Chart: chart,
	}
	err = r.pool.QueryRow(ctx,
		`INSERT INTO charts (id, label, chart) VALUES ($1, $2, $3) RETURNING created_at`,
		rec.ID, label, raw,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetChart returns nil without error when the id is unknown.
func (r *ChartRepository) GetChart(ctx context.Context, id string) (*domain.ChartRecord, error) {
	_, span := r.tracer.Start(ctx, "chart-repo.get-chart")
	defer span.End()

	var rec domain.ChartRecord
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, label, chart, created_at FROM charts WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.Label, &raw, &rec.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &rec.Chart); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ChartRepository) ListCharts(ctx context.Context, limit int) ([]domain.ChartRecord, error) {
	_, span := r.tracer.Start(ctx, "chart-repo.list-charts")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, label, chart, created_at FROM charts ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.ChartRecord, 0, limit)
	for rows.Next() {
		var rec domain.ChartRecord
		var raw []byte
		if err := rows.Scan(&rec.ID, &rec.Label, &raw, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &rec.Chart); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteChart reports whether a row was actually removed.
func (r *ChartRepository) DeleteChart(ctx context.Context, id string) (bool, error) {
	_, span := r.tracer.Start(ctx, "chart-repo.delete-chart")
	defer span.End()

	tag, err := r.pool.Exec(ctx, `DELETE FROM charts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ChartRepository) UpsertDayScores(ctx context.Context, chartID string, scores []domain.DayScore) error {
	if len(scores) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "chart-repo.upsert-day-scores")
	defer span.End()

	batch := &pgx.Batch{}
	for _, ds := range scores {
		raw, err := json.Marshal(ds)
		if err != nil {
			return err
		}
		batch.Queue(
			`INSERT INTO day_scores (chart_id, score_date, score)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (chart_id, score_date) DO UPDATE SET
			     score = EXCLUDED.score,
			     created_at = NOW()`,
			chartID, ds.Date, raw,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range scores {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// GetDayScore returns nil without error when no score is stored.
func (r *ChartRepository) GetDayScore(ctx context.Context, chartID string, date time.Time) (*domain.DayScore, error) {
	_, span := r.tracer.Start(ctx, "chart-repo.get-day-score")
	defer span.End()

	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT score FROM day_scores WHERE chart_id = $1 AND score_date = $2`,
		chartID, date.Format("2006-01-02"),
	).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ds domain.DayScore
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

func (r *ChartRepository) ListDayScores(ctx context.Context, chartID string, from, to time.Time) ([]domain.DayScore, error) {
	_, span := r.tracer.Start(ctx, "chart-repo.list-day-scores")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT score FROM day_scores
		 WHERE chart_id = $1 AND score_date >= $2 AND score_date <= $3
		 ORDER BY score_date`,
		chartID, from.Format("2006-01-02"), to.Format("2006-01-02"),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []domain.DayScore
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var ds domain.DayScore
		if err := json.Unmarshal(raw, &ds); err != nil {
			return nil, err
		}
		scores = append(scores, ds)
	}
	return scores, rows.Err()
}
