package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"muhurta/internal/domain"
	"muhurta/internal/rules"
)

type stubChartService struct {
	records map[string]*domain.ChartRecord

	lastUploadLabel string
	lastListLimit   int
}

func (s *stubChartService) Upload(ctx context.Context, reportText, label string, referenceDate time.Time) (*domain.ChartRecord, error) {
	if reportText == "" {
		return nil, fmt.Errorf("empty report")
	}
	s.lastUploadLabel = label
	rec := &domain.ChartRecord{
		ID:        "chart-" + label,
		Label:     label,
		CreatedAt: time.Unix(0, 0).UTC(),
		Chart:     domain.ParsedChart{Lagna: "Sc", NatalNakshatra: "Visa"},
	}
	if s.records == nil {
		s.records = make(map[string]*domain.ChartRecord)
	}
	s.records[rec.ID] = rec
	return rec, nil
}

func (s *stubChartService) Get(ctx context.Context, id string) (*domain.ChartRecord, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("chart not found")
	}
	copy := *rec
	return &copy, nil
}

func (s *stubChartService) List(ctx context.Context, limit int) ([]domain.ChartRecord, error) {
	s.lastListLimit = limit
	out := make([]domain.ChartRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec)
	}
	return out, nil
}

type stubOutlookService struct {
	lastChartID string
	lastDate    time.Time
	lastDays    int
}

func (s *stubOutlookService) DayOutlook(ctx context.Context, chartID string, date time.Time) (*domain.DayScore, error) {
	s.lastChartID = chartID
	s.lastDate = date
	return &domain.DayScore{
		Date:       date.Format("2006-01-02"),
		Dimensions: map[domain.Dimension]int{domain.DimensionWealth: 85},
		TotalIndex: 80,
		Signal:     domain.SignalGreen,
		TaraLabel:  domain.TaraSampat,
	}, nil
}

func (s *stubOutlookService) Calendar(ctx context.Context, chartID string, start time.Time, days int) ([]domain.DayScore, error) {
	s.lastChartID = chartID
	s.lastDays = days
	out := make([]domain.DayScore, days)
	for i := range out {
		out[i] = domain.DayScore{
			Date:             start.AddDate(0, 0, i).Format("2006-01-02"),
			Dimensions:       map[domain.Dimension]int{},
			TotalIndex:       70,
			Signal:           domain.SignalYellow,
			Breakdown:        map[domain.Dimension]domain.DimensionBreakdown{},
			DominantTransits: []domain.DominantTransit{},
			ActionTags:       []string{},
			Do:               []string{},
			Avoid:            []string{},
		}
	}
	return out, nil
}

func testServer() (*sdkmcp.Server, *stubChartService, *stubOutlookService) {
	charts := &stubChartService{
		records: map[string]*domain.ChartRecord{
			"chart-demo": {
				ID:        "chart-demo",
				Label:     "demo",
				CreatedAt: time.Unix(0, 0).UTC(),
				Chart:     domain.ParsedChart{Lagna: "Sc", NatalNakshatra: "Visa", NatalMoonRasi: "Li"},
			},
		},
	}
	outlooks := &stubOutlookService{}

	srv := NewServer(nil, charts, outlooks, rules.NewLoader(""), ServerConfig{RequestTimeout: time.Second})
	return srv, charts, outlooks
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}
