package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Tab bar styles
	TabStyle       = lipgloss.NewStyle().Padding(0, 2)
	ActiveTabStyle = TabStyle.Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))
	InactiveTabStyle = TabStyle.
				Foreground(lipgloss.Color("#888888"))

	// Signal colors
	SignalGreenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	SignalYellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")).Bold(true)
	SignalRedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)

	// Calendar cell backgrounds
	CellGreen   = lipgloss.Color("#005F00")
	CellYellow  = lipgloss.Color("#5F5F00")
	CellRed     = lipgloss.Color("#5F0000")
	CellText    = lipgloss.Color("#FAFAFA")
	CursorColor = lipgloss.Color("#7D56F4")

	// General styles
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	SubtextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	BorderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#555555"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	SpinnerColor = lipgloss.Color("#7D56F4")

	// Chat styles
	UserMsgStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	AssistantMsgStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))

	// Score bar colors
	ScoreGoodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	ScoreOkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	ScoreBadStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)
