package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"muhurta/internal/domain"
)

func registerResources(server *mcp.Server, charts ChartReaderWriter, outlooks OutlookReader, ruleSource RuleReader) {
	server.AddResource(&mcp.Resource{
		URI:         "outlook://dimensions",
		Name:        "dimensions",
		Description: "The five outlook dimensions in evaluation order",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, domain.Dimensions)
	})

	server.AddResource(&mcp.Resource{
		URI:         "rules://catalog",
		Name:        "rule-catalog",
		Description: "The active scoring catalog: dasha scores, tara multipliers, vedha rules",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		if ruleSource == nil {
			return nil, fmt.Errorf("rule catalog unavailable")
		}
		return jsonResource(req.Params.URI, ruleSource.Catalog())
	})

	server.AddResource(&mcp.Resource{
		URI:         "charts://list",
		Name:        "charts-list",
		Description: "Stored natal charts",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if charts == nil {
			return nil, fmt.Errorf("chart service unavailable")
		}
		list, err := charts.List(ctx, defaultChartLimit)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, chartsListOutput{Charts: list})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "charts://item/{id}",
		Name:        "chart-by-id",
		Description: "One stored natal chart",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if charts == nil {
			return nil, fmt.Errorf("chart service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "charts" || parsed.Host != "item" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		id, err := normalizeChartID(strings.Trim(strings.TrimSpace(parsed.Path), "/"))
		if err != nil {
			return nil, err
		}
		rec, err := charts.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, chartsGetOutput{Chart: rec})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "outlook://day/{chartID}{?date}",
		Name:        "day-outlook",
		Description: "One day's outlook for a stored chart; optional date query param",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if outlooks == nil {
			return nil, fmt.Errorf("outlook service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "outlook" || parsed.Host != "day" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		id, err := normalizeChartID(strings.Trim(strings.TrimSpace(parsed.Path), "/"))
		if err != nil {
			return nil, err
		}
		date, err := normalizeDate(parsed.Query().Get("date"))
		if err != nil {
			return nil, err
		}

		ds, err := outlooks.DayOutlook(ctx, id, date)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, outlookDayOutput{Score: ds})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "outlook://calendar/{chartID}{?start,days}",
		Name:        "calendar-outlook",
		Description: "Consecutive day outlooks for a stored chart; optional start/days query params",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if outlooks == nil {
			return nil, fmt.Errorf("outlook service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "outlook" || parsed.Host != "calendar" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		id, err := normalizeChartID(strings.Trim(strings.TrimSpace(parsed.Path), "/"))
		if err != nil {
			return nil, err
		}
		start, err := normalizeDate(parsed.Query().Get("start"))
		if err != nil {
			return nil, err
		}

		days := defaultCalendarDays
		if rawDays := strings.TrimSpace(parsed.Query().Get("days")); rawDays != "" {
			n, err := strconv.Atoi(rawDays)
			if err != nil {
				return nil, fmt.Errorf("invalid days: %s", rawDays)
			}
			days = normalizeCalendarDays(n)
		}

		scores, err := outlooks.Calendar(ctx, id, start, days)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, outlookCalendarOutput{
			ChartID:  id,
			Start:    start.Format("2006-01-02"),
			Days:     days,
			Calendar: scores,
		})
	})
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
