package tui

import (
	"context"
	"time"

	"muhurta/internal/domain"
)

// ChartQuerier provides stored charts to the TUI.
type ChartQuerier interface {
	List(ctx context.Context, limit int) ([]domain.ChartRecord, error)
}

// OutlookQuerier provides day and calendar scores to the TUI.
type OutlookQuerier interface {
	DayOutlook(ctx context.Context, chartID string, date time.Time) (*domain.DayScore, error)
	Calendar(ctx context.Context, chartID string, start time.Time, days int) ([]domain.DayScore, error)
}

// AdvisorQuerier provides LLM advisor access to the TUI. Pinning a chart
// gives later questions that chart's current day score as context.
type AdvisorQuerier interface {
	Ask(ctx context.Context, chatID int64, message string) (string, error)
	PinChart(chatID int64, chartID string)
	ClearHistory(chatID int64)
}

// SSHChatIDOffset is the base offset for generating synthetic chat IDs
// for SSH users. The final chat ID is SSHChatIDOffset - user.ID.
// This avoids collisions with Telegram chat IDs.
const SSHChatIDOffset int64 = -1_000_000

// Services bundles all service dependencies injected into the TUI.
type Services struct {
	Charts   ChartQuerier
	Outlooks OutlookQuerier
	Advisor  AdvisorQuerier
	Days     int
	UserID   int64
	Username string
}

// ChatID returns the synthetic chat ID for this SSH session.
func (s Services) ChatID() int64 {
	return SSHChatIDOffset - s.UserID
}
