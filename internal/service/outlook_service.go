package service

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"muhurta/internal/domain"
	"muhurta/internal/features"
	"muhurta/internal/rules"
	"muhurta/internal/scoring"
)

type OutlookScoreStore interface {
	GetChart(ctx context.Context, id string) (*domain.ChartRecord, error)
	UpsertDayScores(ctx context.Context, chartID string, scores []domain.DayScore) error
}

type ScoreCache interface {
	Get(ctx context.Context, chartID, date string) (*domain.DayScore, error)
	Set(ctx context.Context, chartID string, ds *domain.DayScore) error
}

type RuleSource interface {
	Catalog() *rules.Catalog
}

type OutlierDetector interface {
	Flag(vectors [][]float64) []bool
}

type OutlookService struct {
	tracer    trace.Tracer
	store     OutlookScoreStore
	cache     ScoreCache
	ephemeris features.EphemerisSource
	rules     RuleSource
	detector  OutlierDetector
	workers   int
}

func NewOutlookService(
	tracer trace.Tracer,
	store OutlookScoreStore,
	cache ScoreCache,
	ephemeris features.EphemerisSource,
	ruleSource RuleSource,
	detector OutlierDetector,
	workers int,
) *OutlookService {
	if workers <= 0 {
		workers = 4
	}
	return &OutlookService{
		tracer:    tracer,
		store:     store,
		cache:     cache,
		ephemeris: ephemeris,
		rules:     ruleSource,
		detector:  detector,
		workers:   workers,
	}
}

// DayOutlook scores one date for a stored chart, cache-aside.
func (s *OutlookService) DayOutlook(ctx context.Context, chartID string, date time.Time) (*domain.DayScore, error) {
	ctx, span := s.tracer.Start(ctx, "outlook-service.day")
	defer span.End()

	key := date.Format("2006-01-02")
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, chartID, key); err == nil && cached != nil {
			return cached, nil
		}
	}

	rec, err := s.store.GetChart(ctx, chartID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrChartNotFound
	}

	ds, err := s.scoreDay(ctx, rec, date)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// Calendar scores a run of consecutive days concurrently, then annotates
// scores with day-over-day deltas and isolation-forest outlier flags.
func (s *OutlookService) Calendar(ctx context.Context, chartID string, start time.Time, days int) ([]domain.DayScore, error) {
	ctx, span := s.tracer.Start(ctx, "outlook-service.calendar")
	defer span.End()

	if days <= 0 {
		days = 30
	}

	rec, err := s.store.GetChart(ctx, chartID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrChartNotFound
	}

	scores := make([]domain.DayScore, days)
	errs := make([]error, days)
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i := 0; i < days; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			ds, err := s.scoreDay(ctx, rec, start.AddDate(0, 0, i))
			if err != nil {
				errs[i] = err
				return
			}
			scores[i] = *ds
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	annotateDeltas(scores)
	s.annotateOutliers(scores)

	if err := s.store.UpsertDayScores(ctx, chartID, scores); err != nil {
		log.Printf("failed to persist calendar for chart %s: %v", chartID, err)
	}
	return scores, nil
}

// StreamCalendar scores the run one day at a time and hands each score to
// emit as soon as it is computed. Deltas are carried day over day; outlier
// flags need the whole window and are left unset here. The batch is
// persisted once the run completes.
func (s *OutlookService) StreamCalendar(ctx context.Context, chartID string, start time.Time, days int, emit func(domain.DayScore) error) error {
	ctx, span := s.tracer.Start(ctx, "outlook-service.calendar-stream")
	defer span.End()

	if days <= 0 {
		days = 30
	}

	rec, err := s.store.GetChart(ctx, chartID)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrChartNotFound
	}

	scores := make([]domain.DayScore, 0, days)
	for i := 0; i < days; i++ {
		ds, err := s.scoreDay(ctx, rec, start.AddDate(0, 0, i))
		if err != nil {
			return err
		}
		scores = append(scores, *ds)
		if n := len(scores); n > 1 {
			annotateDeltas(scores[n-2:])
		}
		if err := emit(scores[len(scores)-1]); err != nil {
			return err
		}
	}

	if err := s.store.UpsertDayScores(ctx, chartID, scores); err != nil {
		log.Printf("failed to persist calendar for chart %s: %v", chartID, err)
	}
	return nil
}

func (s *OutlookService) scoreDay(ctx context.Context, rec *domain.ChartRecord, date time.Time) (*domain.DayScore, error) {
	key := date.Format("2006-01-02")
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, rec.ID, key); err == nil && cached != nil {
			return cached, nil
		}
	}

	feats, err := features.Resolve(date, s.ephemeris)
	if err != nil {
		return nil, err
	}
	ds := scoring.Synthesize(&rec.Chart, date, feats, s.rules.Catalog())

	if s.cache != nil {
		if err := s.cache.Set(ctx, rec.ID, &ds); err != nil {
			log.Printf("failed to cache score %s/%s: %v", rec.ID, key, err)
		}
	}
	return &ds, nil
}

// annotateDeltas writes per-dimension day-over-day changes; the first
// day has none.
func annotateDeltas(scores []domain.DayScore) {
	for i := 1; i < len(scores); i++ {
		deltas := make(map[domain.Dimension]int, len(domain.Dimensions))
		for _, dim := range domain.Dimensions {
			deltas[dim] = scores[i].Dimensions[dim] - scores[i-1].Dimensions[dim]
		}
		scores[i].Deltas = deltas
	}
}

func (s *OutlookService) annotateOutliers(scores []domain.DayScore) {
	if s.detector == nil || len(scores) == 0 {
		return
	}
	vectors := make([][]float64, len(scores))
	for i, ds := range scores {
		vec := make([]float64, 0, len(domain.Dimensions)+1)
		for _, dim := range domain.Dimensions {
			vec = append(vec, float64(ds.Dimensions[dim]))
		}
		vec = append(vec, float64(ds.TotalIndex))
		vectors[i] = vec
	}
	for i, unusual := range s.detector.Flag(vectors) {
		scores[i].Unusual = unusual
	}
}
