package service

import (
	"context"
	"errors"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"

	"muhurta/internal/domain"
	"muhurta/internal/parser"
)

var ErrChartNotFound = errors.New("chart not found")

type ChartRepository interface {
	InsertChart(ctx context.Context, label string, chart domain.ParsedChart) (*domain.ChartRecord, error)
	GetChart(ctx context.Context, id string) (*domain.ChartRecord, error)
	ListCharts(ctx context.Context, limit int) ([]domain.ChartRecord, error)
	DeleteChart(ctx context.Context, id string) (bool, error)
}

type ScoreInvalidator interface {
	InvalidateChart(ctx context.Context, chartID string) error
}

type ChartService struct {
	tracer trace.Tracer
	repo   ChartRepository
	cache  ScoreInvalidator
}

func NewChartService(tracer trace.Tracer, repo ChartRepository, cache ScoreInvalidator) *ChartService {
	return &ChartService{tracer: tracer, repo: repo, cache: cache}
}

// Upload parses a raw natal report and persists the result. Parse errors
// are returned verbatim so callers can show the failing field.
func (s *ChartService) Upload(ctx context.Context, reportText, label string, referenceDate time.Time) (*domain.ChartRecord, error) {
	ctx, span := s.tracer.Start(ctx, "chart-service.upload")
	defer span.End()

	chart, err := parser.Parse(reportText, referenceDate)
	if err != nil {
		return nil, err
	}
	return s.repo.InsertChart(ctx, label, *chart)
}

func (s *ChartService) Get(ctx context.Context, id string) (*domain.ChartRecord, error) {
	ctx, span := s.tracer.Start(ctx, "chart-service.get")
	defer span.End()

	rec, err := s.repo.GetChart(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrChartNotFound
	}
	return rec, nil
}

func (s *ChartService) List(ctx context.Context, limit int) ([]domain.ChartRecord, error) {
	ctx, span := s.tracer.Start(ctx, "chart-service.list")
	defer span.End()

	return s.repo.ListCharts(ctx, limit)
}

func (s *ChartService) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "chart-service.delete")
	defer span.End()

	ok, err := s.repo.DeleteChart(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrChartNotFound
	}
	if s.cache != nil {
		if err := s.cache.InvalidateChart(ctx, id); err != nil {
			log.Printf("failed to invalidate scores for chart %s: %v", id, err)
		}
	}
	return nil
}
