package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type advisorReplyMsg string
type advisorErrMsg struct{ err error }

// dayDetailMsg carries a locally rendered score breakdown for /day,
// produced without a round trip to the advisor.
type dayDetailMsg string

type chatRole int

const (
	roleUser chatRole = iota
	roleAdvisor
	roleNote
)

type chatMessage struct {
	Role    chatRole
	Content string
	Time    time.Time
}

// ChatModel is the Bubble Tea model for the advisor screen. Questions go
// to the LLM advisor against the chart pinned from the Charts tab; /day
// renders a score breakdown locally from the outlook service.
type ChatModel struct {
	services   Services
	chartID    string
	chartLabel string
	messages   []chatMessage
	input      textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	waiting    bool
	err        error
	width      int
	height     int
	ready      bool
}

func NewChatModel(svc Services) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about your outlook, or /day YYYY-MM-DD"
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(SpinnerColor)

	return ChatModel{
		services: svc,
		input:    ti,
		spinner:  sp,
	}
}

func (m ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages.
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case chartSelectedMsg:
		m.chartID = msg.id
		m.chartLabel = msg.label
		if m.services.Advisor != nil {
			m.services.Advisor.PinChart(m.services.ChatID(), msg.id)
		}
		m.appendNote(fmt.Sprintf("Now advising on chart %s.", chartDisplayName(msg.id, msg.label)))
		return m, nil

	case advisorReplyMsg:
		m.messages = append(m.messages, chatMessage{
			Role:    roleAdvisor,
			Content: string(msg),
			Time:    time.Now(),
		})
		m.waiting = false
		m.err = nil
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		return m, nil

	case dayDetailMsg:
		m.waiting = false
		m.err = nil
		m.appendNote(string(msg))
		return m, nil

	case advisorErrMsg:
		m.waiting = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEnter && !m.waiting {
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				break
			}
			m.input.SetValue("")
			if strings.HasPrefix(text, "/") {
				var cmd tea.Cmd
				m, cmd = m.runCommand(text)
				return m, cmd
			}
			m.messages = append(m.messages, chatMessage{
				Role:    roleUser,
				Content: text,
				Time:    time.Now(),
			})
			m.waiting = true
			m.viewport.SetContent(m.renderMessages())
			m.viewport.GotoBottom()
			return m, tea.Batch(
				m.askAdvisorCmd(text),
				m.spinner.Tick,
			)
		}

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.waiting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// runCommand executes a leading-slash command locally. /day works even
// when the advisor is not configured since it only needs the outlook
// service.
func (m ChatModel) runCommand(text string) (ChatModel, tea.Cmd) {
	fields := strings.Fields(text)
	switch fields[0] {
	case "/day":
		if m.chartID == "" {
			m.appendNote("Pick a chart on the Charts tab first.")
			return m, nil
		}
		date := time.Now().UTC()
		if len(fields) > 1 {
			d, err := time.Parse("2006-01-02", fields[1])
			if err != nil {
				m.appendNote("Usage: /day YYYY-MM-DD")
				return m, nil
			}
			date = d
		}
		m.waiting = true
		return m, tea.Batch(m.dayDetailCmd(date), m.spinner.Tick)

	case "/clear":
		if m.services.Advisor != nil {
			m.services.Advisor.ClearHistory(m.services.ChatID())
		}
		m.messages = nil
		m.err = nil
		m.appendNote("Conversation cleared.")
		return m, nil

	default:
		m.appendNote("Commands: /day [YYYY-MM-DD], /clear")
		return m, nil
	}
}

func (m *ChatModel) appendNote(text string) {
	m.messages = append(m.messages, chatMessage{
		Role:    roleNote,
		Content: text,
		Time:    time.Now(),
	})
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

// View renders the chat screen.
func (m ChatModel) View() string {
	if m.services.Advisor == nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			"",
			HeaderStyle.Render("  Outlook Advisor"),
			"",
			SubtextStyle.Render("  Advisor not available. Set OPENAI_API_KEY to enable."),
		)
	}

	var sections []string

	header := "  Outlook Advisor"
	if m.chartID != "" {
		header = fmt.Sprintf("  Outlook Advisor (%s)", chartDisplayName(m.chartID, m.chartLabel))
	}
	sections = append(sections, HeaderStyle.Render(header))
	sections = append(sections, SubtextStyle.Render(strings.Repeat("─", m.width-2)))

	if !m.ready {
		m.initViewport()
	}
	sections = append(sections, m.viewport.View())

	sections = append(sections, SubtextStyle.Render(strings.Repeat("─", m.width-2)))

	if m.waiting {
		sections = append(sections, fmt.Sprintf("  %s Thinking...", m.spinner.View()))
	} else {
		if m.err != nil {
			sections = append(sections, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		}
		sections = append(sections, "  "+m.input.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the model dimensions.
func (m *ChatModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.input.Width = w - 6
	if m.ready {
		m.viewport.Width = w - 2
		m.viewport.Height = h - 6 // account for header, borders, input
	}
	m.ready = false // re-initialize viewport on next View
}

// Focus gives focus to the text input.
func (m *ChatModel) Focus() {
	m.input.Focus()
}

// Blur removes focus from the text input.
func (m *ChatModel) Blur() {
	m.input.Blur()
}

// IsWaiting returns whether the model is waiting for a response (for testing).
func (m ChatModel) IsWaiting() bool { return m.waiting }

// MessageCount returns the number of messages (for testing).
func (m ChatModel) MessageCount() int { return len(m.messages) }

// PinnedChartID returns the chart the chat is pinned to (for testing).
func (m ChatModel) PinnedChartID() string { return m.chartID }

func (m *ChatModel) initViewport() {
	vpHeight := m.height - 6
	if vpHeight < 3 {
		vpHeight = 3
	}
	vpWidth := m.width - 2
	if vpWidth < 10 {
		vpWidth = 10
	}
	m.viewport = viewport.New(vpWidth, vpHeight)
	m.viewport.SetContent(m.renderMessages())
	m.ready = true
}

func (m ChatModel) renderMessages() string {
	if len(m.messages) == 0 {
		return SubtextStyle.Render(
			"  Pick a chart, then ask about a day, a dimension, or what the scores mean.\n" +
				"  Commands: /day [YYYY-MM-DD], /clear")
	}

	var lines []string
	for _, msg := range m.messages {
		timestamp := SubtextStyle.Render(msg.Time.Format("15:04"))
		switch msg.Role {
		case roleUser:
			lines = append(lines, fmt.Sprintf("  %s  %s %s",
				timestamp,
				UserMsgStyle.Render("You:"),
				msg.Content,
			))
		case roleAdvisor:
			lines = append(lines, fmt.Sprintf("  %s  %s",
				timestamp,
				AssistantMsgStyle.Render("Advisor:"),
			))
			// Wrap long advisor responses
			for _, line := range strings.Split(msg.Content, "\n") {
				lines = append(lines, "         "+line)
			}
		case roleNote:
			for _, line := range strings.Split(msg.Content, "\n") {
				lines = append(lines, "  "+SubtextStyle.Render(line))
			}
		}
		lines = append(lines, "")
	}

	if m.waiting {
		lines = append(lines, fmt.Sprintf("  %s  %s",
			SubtextStyle.Render(time.Now().Format("15:04")),
			SubtextStyle.Render("Advisor is thinking..."),
		))
	}

	return strings.Join(lines, "\n")
}

func (m ChatModel) askAdvisorCmd(question string) tea.Cmd {
	chatID := m.services.ChatID()
	return func() tea.Msg {
		if m.services.Advisor == nil {
			return advisorErrMsg{err: fmt.Errorf("advisor not available")}
		}
		reply, err := m.services.Advisor.Ask(context.Background(), chatID, question)
		if err != nil {
			return advisorErrMsg{err: err}
		}
		return advisorReplyMsg(reply)
	}
}

func (m ChatModel) dayDetailCmd(date time.Time) tea.Cmd {
	chartID := m.chartID
	width := m.width
	if width < 40 {
		width = 40
	}
	return func() tea.Msg {
		if m.services.Outlooks == nil {
			return advisorErrMsg{err: fmt.Errorf("outlook service not available")}
		}
		ds, err := m.services.Outlooks.DayOutlook(context.Background(), chartID, date)
		if err != nil {
			return advisorErrMsg{err: err}
		}
		return dayDetailMsg(RenderDayDetail(*ds, width))
	}
}
