package mcp

import (
	"fmt"
	"strings"
	"time"

	"muhurta/internal/domain"
)

const (
	defaultChartLimit   = 50
	maxChartLimit       = 200
	defaultCalendarDays = 30
	maxCalendarDays     = 366
)

type chartsListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of charts to return, max 200"`
}

type chartsListOutput struct {
	Charts []domain.ChartRecord `json:"charts"`
}

type chartsGetInput struct {
	ChartID string `json:"chart_id" jsonschema:"stored chart identifier"`
}

type chartsGetOutput struct {
	Chart *domain.ChartRecord `json:"chart"`
}

type chartUploadInput struct {
	Report        string `json:"report" jsonschema:"raw natal chart report text"`
	Label         string `json:"label,omitempty" jsonschema:"optional human-readable label"`
	ReferenceDate string `json:"reference_date,omitempty" jsonschema:"date used to pick the active dasha period, YYYY-MM-DD, default today"`
}

type chartUploadOutput struct {
	Chart *domain.ChartRecord `json:"chart"`
}

type outlookDayInput struct {
	ChartID string `json:"chart_id" jsonschema:"stored chart identifier"`
	Date    string `json:"date,omitempty" jsonschema:"date to score, YYYY-MM-DD, default today"`
}

type outlookDayOutput struct {
	Score *domain.DayScore `json:"score"`
}

type outlookCalendarInput struct {
	ChartID string `json:"chart_id" jsonschema:"stored chart identifier"`
	Start   string `json:"start,omitempty" jsonschema:"first date to score, YYYY-MM-DD, default today"`
	Days    int    `json:"days,omitempty" jsonschema:"number of consecutive days, max 366"`
}

type outlookCalendarOutput struct {
	ChartID  string            `json:"chart_id"`
	Start    string            `json:"start"`
	Days     int               `json:"days"`
	Calendar []domain.DayScore `json:"calendar"`
}

func normalizeChartID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("chart_id is required")
	}
	return id, nil
}

func normalizeDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}
	return d, nil
}

func normalizeChartLimit(limit int) int {
	if limit <= 0 {
		return defaultChartLimit
	}
	if limit > maxChartLimit {
		return maxChartLimit
	}
	return limit
}

func normalizeCalendarDays(days int) int {
	if days <= 0 {
		return defaultCalendarDays
	}
	if days > maxCalendarDays {
		return maxCalendarDays
	}
	return days
}
