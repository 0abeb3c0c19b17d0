package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"

	"muhurta/internal/domain"
)

const refreshListLimit = 200

type ChartLister interface {
	List(ctx context.Context, limit int) ([]domain.ChartRecord, error)
}

type CalendarScorer interface {
	Calendar(ctx context.Context, chartID string, start time.Time, days int) ([]domain.DayScore, error)
}

// CalendarRefresher periodically rescores the upcoming calendar window for
// every stored chart so cached and persisted scores stay warm.
type CalendarRefresher struct {
	tracer   trace.Tracer
	charts   ChartLister
	outlooks CalendarScorer
	interval time.Duration
	days     int
}

func NewCalendarRefresher(tracer trace.Tracer, charts ChartLister, outlooks CalendarScorer, intervalSecs, days int) *CalendarRefresher {
	if intervalSecs <= 0 {
		intervalSecs = 3600
	}
	if days <= 0 {
		days = 30
	}
	return &CalendarRefresher{
		tracer:   tracer,
		charts:   charts,
		outlooks: outlooks,
		interval: time.Duration(intervalSecs) * time.Second,
		days:     days,
	}
}

// Start runs an initial refresh, then one per tick. Blocks until ctx is cancelled.
func (r *CalendarRefresher) Start(ctx context.Context) {
	if r == nil || r.charts == nil || r.outlooks == nil {
		log.Println("Calendar refresher disabled: no services")
		<-ctx.Done()
		return
	}

	log.Println("Calendar refresher starting...")
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.refreshAll(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Calendar refresher stopped")
			return
		case <-ticker.C:
			r.refreshAll(ctx)
		}
	}
}

func (r *CalendarRefresher) refreshAll(ctx context.Context) {
	if r.tracer != nil {
		var span trace.Span
		ctx, span = r.tracer.Start(ctx, "calendar-refresher.refresh-all")
		defer span.End()
	}

	records, err := r.charts.List(ctx, refreshListLimit)
	if err != nil {
		log.Printf("calendar refresh list error: %v", err)
		return
	}

	start := time.Now().UTC()
	refreshed := 0
	for _, rec := range records {
		if ctx.Err() != nil {
			return
		}
		if _, err := r.outlooks.Calendar(ctx, rec.ID, start, r.days); err != nil {
			log.Printf("calendar refresh error for chart %s: %v", rec.ID, err)
			continue
		}
		refreshed++
	}
	if refreshed > 0 {
		log.Printf("calendar refresh completed for %d chart(s)", refreshed)
	}
}
