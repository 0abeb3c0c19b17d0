package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"muhurta/internal/domain"
)

const calendarColumns = 7

// SignalStyle maps a day signal to its foreground style.
func SignalStyle(s domain.Signal) lipgloss.Style {
	switch s {
	case domain.SignalGreen:
		return SignalGreenStyle
	case domain.SignalYellow:
		return SignalYellowStyle
	default:
		return SignalRedStyle
	}
}

func signalCellColor(s domain.Signal) lipgloss.Color {
	switch s {
	case domain.SignalGreen:
		return CellGreen
	case domain.SignalYellow:
		return CellYellow
	default:
		return CellRed
	}
}

// chartDisplayName prefers the user-given label over the raw id.
func chartDisplayName(id, label string) string {
	if label != "" {
		return label
	}
	return id
}

// FormatChartLine renders one stored chart as a single line.
func FormatChartLine(rec domain.ChartRecord) string {
	label := rec.Label
	if label == "" {
		label = "(unlabelled)"
	}
	return fmt.Sprintf("%-38s %-16s lagna %-3s moon %-5s %s",
		rec.ID,
		label,
		rec.Chart.Lagna,
		rec.Chart.NatalNakshatra,
		SubtextStyle.Render(rec.CreatedAt.Format("2006-01-02")),
	)
}

// RenderCalendarGrid renders day scores as a seven-column grid. Each cell
// shows the day of month tinted by signal; the cursor cell is highlighted
// and unusual days carry a star.
func RenderCalendarGrid(scores []domain.DayScore, cursor int) string {
	if len(scores) == 0 {
		return SubtextStyle.Render("No scored days")
	}

	var rows []string
	var row []string
	for i, ds := range scores {
		label := fmt.Sprintf("%2s", dayOfMonth(ds.Date))
		if ds.Unusual {
			label += "*"
		} else {
			label += " "
		}

		style := lipgloss.NewStyle().
			Background(signalCellColor(ds.Signal)).
			Foreground(CellText).
			Padding(0, 1)
		if i == cursor {
			style = style.Background(CursorColor).Bold(true)
		}
		row = append(row, style.Render(label))

		if (i+1)%calendarColumns == 0 || i == len(scores)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	return strings.Join(rows, "\n")
}

// RenderScoreBar renders one dimension score as a labelled bar.
func RenderScoreBar(label string, score int, barWidth int) string {
	if barWidth <= 0 {
		barWidth = 20
	}
	frac := float64(score) / 100
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(math.Round(frac * float64(barWidth)))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	style := ScoreGoodStyle
	if score < 45 {
		style = ScoreBadStyle
	} else if score < 65 {
		style = ScoreOkStyle
	}

	bar := style.Render(strings.Repeat("█", filled)) + SubtextStyle.Render(strings.Repeat("░", empty))
	return fmt.Sprintf("%-10s %s %3d", label, bar, score)
}

// RenderDayDetail renders the full breakdown pane for one day.
func RenderDayDetail(ds domain.DayScore, width int) string {
	var lines []string

	header := fmt.Sprintf("%s  %s", ds.Date, SignalStyle(ds.Signal).Render(strings.ToUpper(string(ds.Signal))))
	lines = append(lines, HeaderStyle.Render(header))
	lines = append(lines, SubtextStyle.Render(fmt.Sprintf("tara %s  dasha %s/%s (%s)  moon %s  tithi %d",
		ds.TaraLabel, ds.DashaMajor, ds.DashaSub, ds.DashaRelation, ds.MoonRasi, ds.Tithi)))
	lines = append(lines, "")

	barWidth := width - 18
	if barWidth < 10 {
		barWidth = 10
	}
	lines = append(lines, RenderScoreBar("total", ds.TotalIndex, barWidth))
	for _, dim := range domain.Dimensions {
		score, ok := ds.Dimensions[dim]
		if !ok {
			continue
		}
		line := RenderScoreBar(string(dim), score, barWidth)
		if delta, ok := ds.Deltas[dim]; ok && delta != 0 {
			line += SubtextStyle.Render(fmt.Sprintf(" (%+d)", delta))
		}
		lines = append(lines, line)
	}

	if ds.Obstruction != nil {
		lines = append(lines, "")
		lines = append(lines, ErrorStyle.Render("! ")+ds.Obstruction.Message)
	}
	if len(ds.SpecialFlags) > 0 {
		lines = append(lines, SubtextStyle.Render("flags: "+strings.Join(ds.SpecialFlags, ", ")))
	}
	if ds.Unusual {
		lines = append(lines, SubtextStyle.Render("* unusual score pattern for this window"))
	}

	if len(ds.Do) > 0 {
		lines = append(lines, "")
		lines = append(lines, SignalGreenStyle.Render("Do:    ")+strings.Join(ds.Do, "; "))
	}
	if len(ds.Avoid) > 0 {
		lines = append(lines, SignalRedStyle.Render("Avoid: ")+strings.Join(ds.Avoid, "; "))
	}

	return strings.Join(lines, "\n")
}

func dayOfMonth(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "??"
	}
	return fmt.Sprintf("%d", d.Day())
}
