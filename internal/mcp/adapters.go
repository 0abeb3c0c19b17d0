package mcp

import (
	"context"
	"time"

	"muhurta/internal/domain"
	"muhurta/internal/rules"
)

// ChartReaderWriter exposes chart upload and lookup operations.
type ChartReaderWriter interface {
	Upload(ctx context.Context, reportText, label string, referenceDate time.Time) (*domain.ChartRecord, error)
	Get(ctx context.Context, id string) (*domain.ChartRecord, error)
	List(ctx context.Context, limit int) ([]domain.ChartRecord, error)
}

// OutlookReader exposes scoring operations for stored charts.
type OutlookReader interface {
	DayOutlook(ctx context.Context, chartID string, date time.Time) (*domain.DayScore, error)
	Calendar(ctx context.Context, chartID string, start time.Time, days int) ([]domain.DayScore, error)
}

// RuleReader exposes the active scoring catalog.
type RuleReader interface {
	Catalog() *rules.Catalog
}
