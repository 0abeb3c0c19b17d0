package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"muhurta/internal/domain"
)

// Calendar message types.
type calendarMsg struct {
	chartID string
	scores  []domain.DayScore
}
type calendarErrMsg struct{ err error }
type firstChartMsg struct {
	id    string
	label string
}
type noChartsMsg struct{}

// CalendarModel is the Bubble Tea model for the outlook calendar screen.
type CalendarModel struct {
	services   Services
	chartID    string
	chartLabel string
	scores     []domain.DayScore
	cursor     int
	loading    bool
	err        error
	width      int
	height     int
}

// NewCalendarModel creates a new calendar model.
func NewCalendarModel(svc Services) CalendarModel {
	return CalendarModel{
		services: svc,
		loading:  true,
	}
}

// Init picks the first stored chart and loads its calendar.
func (m CalendarModel) Init() tea.Cmd {
	return m.loadFirstChartCmd()
}

// Update handles incoming messages.
func (m CalendarModel) Update(msg tea.Msg) (CalendarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case firstChartMsg:
		m.chartID = msg.id
		m.chartLabel = msg.label
		m.loading = true
		return m, m.fetchCalendarCmd()

	case chartSelectedMsg:
		m.chartID = msg.id
		m.chartLabel = msg.label
		m.cursor = 0
		m.loading = true
		return m, m.fetchCalendarCmd()

	case noChartsMsg:
		m.loading = false
		return m, nil

	case calendarMsg:
		if msg.chartID != m.chartID {
			return m, nil
		}
		m.scores = msg.scores
		m.loading = false
		m.err = nil
		if m.cursor >= len(m.scores) {
			m.cursor = 0
		}
		return m, nil

	case calendarErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Refresh):
			if m.chartID == "" {
				return m, m.loadFirstChartCmd()
			}
			m.loading = true
			return m, m.fetchCalendarCmd()

		case key.Matches(msg, DefaultKeyMap.PrevDay):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, DefaultKeyMap.NextDay):
			if m.cursor < len(m.scores)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, DefaultKeyMap.PrevWeek):
			if m.cursor >= calendarColumns {
				m.cursor -= calendarColumns
			}
			return m, nil

		case key.Matches(msg, DefaultKeyMap.NextWeek):
			if m.cursor+calendarColumns < len(m.scores) {
				m.cursor += calendarColumns
			}
			return m, nil
		}
	}

	return m, nil
}

// View renders the calendar grid next to the selected day's breakdown.
func (m CalendarModel) View() string {
	if m.loading && len(m.scores) == 0 {
		return SubtextStyle.Render("Loading calendar...")
	}
	if m.err != nil && len(m.scores) == 0 {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.chartID == "" {
		return SubtextStyle.Render("No charts stored yet. Upload one via the HTTP API, then press R.")
	}

	label := m.chartLabel
	if label == "" {
		label = m.chartID
	}
	header := HeaderStyle.Render("  Outlook Calendar") + SubtextStyle.Render("  chart: "+label)

	grid := RenderCalendarGrid(m.scores, m.cursor)

	gridWidth := lipgloss.Width(grid) + 4
	detailWidth := m.width - gridWidth - 6
	if detailWidth < 30 {
		detailWidth = 30
	}

	var detail string
	if m.cursor < len(m.scores) {
		detail = RenderDayDetail(m.scores[m.cursor], detailWidth)
	}

	gridBox := BorderStyle.Render(grid)
	detailBox := BorderStyle.Width(detailWidth).Render(detail)
	body := lipgloss.JoinHorizontal(lipgloss.Top, gridBox, " ", detailBox)

	help := SubtextStyle.Render("  [h/l] day  [j/k] week  [R] refresh  * unusual")

	return lipgloss.JoinVertical(lipgloss.Left, header, body, help)
}

// SetSize updates the model dimensions.
func (m *CalendarModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Cursor returns the selected day index (for testing).
func (m CalendarModel) Cursor() int { return m.cursor }

// ScoreCount returns the number of loaded days (for testing).
func (m CalendarModel) ScoreCount() int { return len(m.scores) }

// ChartID returns the chart whose calendar is shown (for testing).
func (m CalendarModel) ChartID() string { return m.chartID }

func (m CalendarModel) loadFirstChartCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Charts == nil {
			return calendarErrMsg{err: fmt.Errorf("chart service not available")}
		}
		records, err := m.services.Charts.List(context.Background(), 1)
		if err != nil {
			return calendarErrMsg{err: err}
		}
		if len(records) == 0 {
			return noChartsMsg{}
		}
		return firstChartMsg{id: records[0].ID, label: records[0].Label}
	}
}

func (m CalendarModel) fetchCalendarCmd() tea.Cmd {
	chartID := m.chartID
	days := m.services.Days
	if days <= 0 {
		days = 30
	}
	return func() tea.Msg {
		if m.services.Outlooks == nil {
			return calendarErrMsg{err: fmt.Errorf("outlook service not available")}
		}
		start := time.Now().UTC()
		scores, err := m.services.Outlooks.Calendar(context.Background(), chartID, start, days)
		if err != nil {
			return calendarErrMsg{err: err}
		}
		return calendarMsg{chartID: chartID, scores: scores}
	}
}
