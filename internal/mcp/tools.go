package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, charts ChartReaderWriter, outlooks OutlookReader) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "charts_list",
		Description: "List stored natal charts",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in chartsListInput) (*mcp.CallToolResult, chartsListOutput, error) {
		if charts == nil {
			return nil, chartsListOutput{}, fmt.Errorf("chart service unavailable")
		}
		result, err := charts.List(ctx, normalizeChartLimit(in.Limit))
		if err != nil {
			return nil, chartsListOutput{}, err
		}
		return nil, chartsListOutput{Charts: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "charts_get",
		Description: "Get one stored natal chart by id",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in chartsGetInput) (*mcp.CallToolResult, chartsGetOutput, error) {
		if charts == nil {
			return nil, chartsGetOutput{}, fmt.Errorf("chart service unavailable")
		}
		id, err := normalizeChartID(in.ChartID)
		if err != nil {
			return nil, chartsGetOutput{}, err
		}
		rec, err := charts.Get(ctx, id)
		if err != nil {
			return nil, chartsGetOutput{}, err
		}
		return nil, chartsGetOutput{Chart: rec}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "chart_upload",
		Description: "Parse a raw natal chart report and store the resulting chart",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in chartUploadInput) (*mcp.CallToolResult, chartUploadOutput, error) {
		if charts == nil {
			return nil, chartUploadOutput{}, fmt.Errorf("chart service unavailable")
		}
		if in.Report == "" {
			return nil, chartUploadOutput{}, fmt.Errorf("report is required")
		}
		referenceDate, err := normalizeDate(in.ReferenceDate)
		if err != nil {
			return nil, chartUploadOutput{}, err
		}
		rec, err := charts.Upload(ctx, in.Report, in.Label, referenceDate)
		if err != nil {
			return nil, chartUploadOutput{}, err
		}
		return nil, chartUploadOutput{Chart: rec}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "outlook_day",
		Description: "Score one day for a stored chart: five dimension scores, total index and signal",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in outlookDayInput) (*mcp.CallToolResult, outlookDayOutput, error) {
		if outlooks == nil {
			return nil, outlookDayOutput{}, fmt.Errorf("outlook service unavailable")
		}
		id, err := normalizeChartID(in.ChartID)
		if err != nil {
			return nil, outlookDayOutput{}, err
		}
		date, err := normalizeDate(in.Date)
		if err != nil {
			return nil, outlookDayOutput{}, err
		}
		ds, err := outlooks.DayOutlook(ctx, id, date)
		if err != nil {
			return nil, outlookDayOutput{}, err
		}
		return nil, outlookDayOutput{Score: ds}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "outlook_calendar",
		Description: "Score a run of consecutive days for a stored chart, with deltas and outlier flags",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in outlookCalendarInput) (*mcp.CallToolResult, outlookCalendarOutput, error) {
		if outlooks == nil {
			return nil, outlookCalendarOutput{}, fmt.Errorf("outlook service unavailable")
		}
		id, err := normalizeChartID(in.ChartID)
		if err != nil {
			return nil, outlookCalendarOutput{}, err
		}
		start, err := normalizeDate(in.Start)
		if err != nil {
			return nil, outlookCalendarOutput{}, err
		}
		days := normalizeCalendarDays(in.Days)

		scores, err := outlooks.Calendar(ctx, id, start, days)
		if err != nil {
			return nil, outlookCalendarOutput{}, err
		}
		return nil, outlookCalendarOutput{
			ChartID:  id,
			Start:    start.Format("2006-01-02"),
			Days:     days,
			Calendar: scores,
		}, nil
	})
}
