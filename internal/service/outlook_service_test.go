package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"muhurta/internal/domain"
	"muhurta/internal/rules"
)

type fakeEphemeris struct{}

var ephemerisBase = map[domain.Planet]float64{
	domain.PlanetSun:     10,
	domain.PlanetMoon:    200,
	domain.PlanetMars:    250,
	domain.PlanetMercury: 20,
	domain.PlanetJupiter: 40,
	domain.PlanetVenus:   340,
	domain.PlanetSaturn:  310,
}

func (fakeEphemeris) LongitudeAndSpeed(date time.Time, body domain.Planet) (float64, float64, error) {
	base, ok := ephemerisBase[body]
	if !ok {
		return 0, 0, errors.New("unknown body")
	}
	lon := base + float64(date.YearDay())
	for lon >= 360 {
		lon -= 360
	}
	return lon, 1.0, nil
}

type fakeScoreCache struct {
	mu      sync.Mutex
	entries map[string]*domain.DayScore
	sets    int
	hits    int
}

func newFakeScoreCache() *fakeScoreCache {
	return &fakeScoreCache{entries: make(map[string]*domain.DayScore)}
}

func (f *fakeScoreCache) Get(ctx context.Context, chartID, date string) (*domain.DayScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ds, ok := f.entries[chartID+"/"+date]; ok {
		f.hits++
		return ds, nil
	}
	return nil, nil
}

func (f *fakeScoreCache) Set(ctx context.Context, chartID string, ds *domain.DayScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[chartID+"/"+ds.Date] = ds
	f.sets++
	return nil
}

type fakeDetector struct {
	flagIndex int
}

func (f *fakeDetector) Flag(vectors [][]float64) []bool {
	flags := make([]bool, len(vectors))
	if f.flagIndex >= 0 && f.flagIndex < len(flags) {
		flags[f.flagIndex] = true
	}
	return flags
}

func outlookFixture(t *testing.T, cache *fakeScoreCache, det OutlierDetector) (*OutlookService, *memChartRepo, string) {
	t.Helper()
	repo := newMemChartRepo()
	rec, err := repo.InsertChart(context.Background(), "demo", domain.ParsedChart{
		NatalNakshatra: "Visa",
		Lagna:          "Sc",
		NatalMoonRasi:  "Li",
		PlanetHouses:   map[domain.Planet]int{domain.PlanetSaturn: 7},
		Timeline: []domain.DashaPeriod{
			{Major: domain.PlanetSaturn, Sub: domain.PlanetSaturn, Start: time.Date(2014, 2, 1, 0, 0, 0, 0, time.UTC)},
		},
	})
	if err != nil {
		t.Fatalf("insert chart: %v", err)
	}
	svc := NewOutlookService(testTracer(), repo, cache, fakeEphemeris{}, rules.NewLoader(""), det, 3)
	return svc, repo, rec.ID
}

func TestDayOutlookComputesAndCaches(t *testing.T) {
	cache := newFakeScoreCache()
	svc, _, chartID := outlookFixture(t, cache, nil)
	date := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)

	ds, err := svc.DayOutlook(context.Background(), chartID, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Date != "2024-05-20" {
		t.Fatalf("date = %q", ds.Date)
	}
	if ds.TotalIndex < 5 || ds.TotalIndex > 99 {
		t.Fatalf("total index %d outside clamp bounds", ds.TotalIndex)
	}
	if cache.sets != 1 {
		t.Fatalf("expected 1 cache set, got %d", cache.sets)
	}

	again, err := svc.DayOutlook(context.Background(), chartID, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.hits == 0 {
		t.Fatal("second query should hit the cache")
	}
	if cache.sets != 1 {
		t.Fatalf("cache hit must not recompute, sets = %d", cache.sets)
	}
	if again.TotalIndex != ds.TotalIndex {
		t.Fatalf("cached score diverged: %d vs %d", again.TotalIndex, ds.TotalIndex)
	}
}

func TestDayOutlookUnknownChart(t *testing.T) {
	svc, _, _ := outlookFixture(t, newFakeScoreCache(), nil)
	_, err := svc.DayOutlook(context.Background(), "nope", time.Now())
	if !errors.Is(err, ErrChartNotFound) {
		t.Fatalf("expected ErrChartNotFound, got %v", err)
	}
}

func TestCalendarScoresEveryDayInOrder(t *testing.T) {
	cache := newFakeScoreCache()
	svc, repo, chartID := outlookFixture(t, cache, nil)
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	scores, err := svc.Calendar(context.Background(), chartID, start, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 10 {
		t.Fatalf("expected 10 days, got %d", len(scores))
	}
	for i, ds := range scores {
		want := start.AddDate(0, 0, i).Format("2006-01-02")
		if ds.Date != want {
			t.Fatalf("day %d = %q, want %q", i, ds.Date, want)
		}
	}
	if scores[0].Deltas != nil {
		t.Fatalf("first day has deltas: %v", scores[0].Deltas)
	}
	for i := 1; i < len(scores); i++ {
		if scores[i].Deltas == nil {
			t.Fatalf("day %d missing deltas", i)
		}
		for _, dim := range domain.Dimensions {
			want := scores[i].Dimensions[dim] - scores[i-1].Dimensions[dim]
			if scores[i].Deltas[dim] != want {
				t.Fatalf("day %d %s delta = %d, want %d", i, dim, scores[i].Deltas[dim], want)
			}
		}
	}
	if repo.upserts != 1 {
		t.Fatalf("expected 1 persisted batch, got %d", repo.upserts)
	}
}

func TestCalendarMarksOutlierDays(t *testing.T) {
	svc, _, chartID := outlookFixture(t, newFakeScoreCache(), &fakeDetector{flagIndex: 3})
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	scores, err := svc.Calendar(context.Background(), chartID, start, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, ds := range scores {
		if (i == 3) != ds.Unusual {
			t.Fatalf("day %d unusual = %v", i, ds.Unusual)
		}
	}
}

func TestCalendarDeterministic(t *testing.T) {
	svc, _, chartID := outlookFixture(t, newFakeScoreCache(), nil)
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	first, err := svc.Calendar(context.Background(), chartID, start, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Calendar(context.Background(), chartID, start, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range first {
		if first[i].TotalIndex != second[i].TotalIndex || first[i].Signal != second[i].Signal {
			t.Fatalf("day %d diverged across runs", i)
		}
	}
}

func TestStreamCalendarEmitsEachDayInOrder(t *testing.T) {
	cache := newFakeScoreCache()
	svc, repo, chartID := outlookFixture(t, cache, nil)
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	var got []domain.DayScore
	err := svc.StreamCalendar(context.Background(), chartID, start, 6, func(ds domain.DayScore) error {
		got = append(got, ds)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("emitted %d days, want 6", len(got))
	}
	for i, ds := range got {
		want := start.AddDate(0, 0, i).Format("2006-01-02")
		if ds.Date != want {
			t.Fatalf("day %d = %q, want %q", i, ds.Date, want)
		}
	}
	if got[0].Deltas != nil {
		t.Fatalf("first day has deltas: %v", got[0].Deltas)
	}
	for i := 1; i < len(got); i++ {
		for _, dim := range domain.Dimensions {
			want := got[i].Dimensions[dim] - got[i-1].Dimensions[dim]
			if got[i].Deltas[dim] != want {
				t.Fatalf("day %d %s delta = %d, want %d", i, dim, got[i].Deltas[dim], want)
			}
		}
	}
	if repo.upserts != 1 {
		t.Fatalf("expected 1 persisted batch, got %d", repo.upserts)
	}
}

func TestStreamCalendarStopsOnEmitError(t *testing.T) {
	cache := newFakeScoreCache()
	svc, repo, chartID := outlookFixture(t, cache, nil)
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	sentinel := errors.New("client gone")
	emitted := 0
	err := svc.StreamCalendar(context.Background(), chartID, start, 6, func(domain.DayScore) error {
		emitted++
		if emitted == 2 {
			return sentinel
		}
		return nil
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected emit error, got %v", err)
	}
	if emitted != 2 {
		t.Fatalf("emitted %d days, want 2", emitted)
	}
	if repo.upserts != 0 {
		t.Fatal("aborted stream must not persist a partial batch")
	}
}

func TestStreamCalendarUnknownChart(t *testing.T) {
	cache := newFakeScoreCache()
	svc, _, _ := outlookFixture(t, cache, nil)

	err := svc.StreamCalendar(context.Background(), "missing", time.Now().UTC(), 3, func(domain.DayScore) error {
		t.Fatal("no day should be emitted for an unknown chart")
		return nil
	})
	if !errors.Is(err, ErrChartNotFound) {
		t.Fatalf("expected ErrChartNotFound, got %v", err)
	}
}
