package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"muhurta/internal/domain"
)

const chartListLimit = 50

// Chart list message types.
type chartListMsg struct{ records []domain.ChartRecord }
type chartListErrMsg struct{ err error }

// chartSelectedMsg is emitted when the user picks a chart; the app routes it
// to the calendar tab.
type chartSelectedMsg struct {
	id    string
	label string
}

// ChartListModel is the Bubble Tea model for browsing stored charts.
type ChartListModel struct {
	services Services
	records  []domain.ChartRecord
	cursor   int
	loading  bool
	err      error
	width    int
	height   int
}

// NewChartListModel creates a new chart list model.
func NewChartListModel(svc Services) ChartListModel {
	return ChartListModel{
		services: svc,
		loading:  true,
	}
}

// Init loads the stored charts.
func (m ChartListModel) Init() tea.Cmd {
	return m.fetchChartsCmd()
}

// Update handles incoming messages.
func (m ChartListModel) Update(msg tea.Msg) (ChartListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case chartListMsg:
		m.records = msg.records
		m.loading = false
		m.err = nil
		if m.cursor >= len(m.records) {
			m.cursor = 0
		}
		return m, nil

	case chartListErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			return m, m.fetchChartsCmd()

		case key.Matches(msg, DefaultKeyMap.PrevWeek):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, DefaultKeyMap.NextWeek):
			if m.cursor < len(m.records)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, DefaultKeyMap.Select):
			if m.cursor < len(m.records) {
				rec := m.records[m.cursor]
				return m, func() tea.Msg {
					return chartSelectedMsg{id: rec.ID, label: rec.Label}
				}
			}
			return m, nil
		}
	}

	return m, nil
}

// View renders the chart list.
func (m ChartListModel) View() string {
	if m.loading && len(m.records) == 0 {
		return SubtextStyle.Render("Loading charts...")
	}
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if len(m.records) == 0 {
		return SubtextStyle.Render("No charts stored yet.")
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("  Stored Charts"))
	b.WriteString("\n\n")
	for i, rec := range m.records {
		line := FormatChartLine(rec)
		if i == m.cursor {
			b.WriteString(ActiveTabStyle.Render("> "))
			b.WriteString(line)
		} else {
			b.WriteString("  ")
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(SubtextStyle.Render("  [j/k] move  [enter] open calendar  [R] refresh"))
	return b.String()
}

// SetSize updates the model dimensions.
func (m *ChartListModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Cursor returns the selected row (for testing).
func (m ChartListModel) Cursor() int { return m.cursor }

// RecordCount returns the number of loaded charts (for testing).
func (m ChartListModel) RecordCount() int { return len(m.records) }

func (m ChartListModel) fetchChartsCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Charts == nil {
			return chartListErrMsg{err: fmt.Errorf("chart service not available")}
		}
		records, err := m.services.Charts.List(context.Background(), chartListLimit)
		if err != nil {
			return chartListErrMsg{err: err}
		}
		return chartListMsg{records: records}
	}
}
