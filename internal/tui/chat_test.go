package tui

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestChatModelSubmitQuestion(t *testing.T) {
	m := NewChatModel(testServices())
	m.SetSize(100, 30)
	m.Focus()

	// Type a question
	for _, r := range "how is tomorrow" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.IsWaiting() {
		t.Fatal("expected model to be waiting after submit")
	}
	if m.MessageCount() != 1 {
		t.Fatalf("expected 1 message, got %d", m.MessageCount())
	}
	if cmd == nil {
		t.Fatal("expected ask command")
	}
}

func TestChatModelReceiveReply(t *testing.T) {
	m := NewChatModel(testServices())
	m.SetSize(100, 30)
	m.waiting = true

	m, _ = m.Update(advisorReplyMsg("a calm day overall"))
	if m.IsWaiting() {
		t.Fatal("expected waiting cleared after reply")
	}
	if m.MessageCount() != 1 {
		t.Fatalf("expected 1 message, got %d", m.MessageCount())
	}
}

func TestChatModelAdvisorError(t *testing.T) {
	m := NewChatModel(testServices())
	m.SetSize(100, 30)
	m.waiting = true

	m, _ = m.Update(advisorErrMsg{err: fmt.Errorf("rate limited")})
	if m.IsWaiting() {
		t.Fatal("expected waiting cleared after error")
	}
	if m.err == nil {
		t.Fatal("expected error recorded")
	}
}

func TestChatModelEmptyInputIgnored(t *testing.T) {
	m := NewChatModel(testServices())
	m.SetSize(100, 30)
	m.Focus()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.IsWaiting() || m.MessageCount() != 0 {
		t.Fatal("expected empty input to be ignored")
	}
}

func TestChatModelViewWithoutAdvisor(t *testing.T) {
	svc := testServices()
	svc.Advisor = nil
	m := NewChatModel(svc)
	m.SetSize(100, 30)

	view := m.View()
	if view == "" {
		t.Fatal("expected rendered disabled view")
	}
}

func typeChat(m ChatModel, text string) ChatModel {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestChatModelPinsSelectedChart(t *testing.T) {
	svc := testServices()
	stub := svc.Advisor.(*stubAdvisorQuerier)
	m := NewChatModel(svc)
	m.SetSize(100, 30)

	m, _ = m.Update(chartSelectedMsg{id: "chart-7", label: "mine"})
	if m.PinnedChartID() != "chart-7" {
		t.Fatalf("pinned chart = %q, want chart-7", m.PinnedChartID())
	}
	if stub.pinned != "chart-7" {
		t.Fatalf("advisor pinned %q, want chart-7", stub.pinned)
	}
	if m.MessageCount() != 1 {
		t.Fatalf("expected pin notice, got %d messages", m.MessageCount())
	}
}

func TestChatModelDayCommand(t *testing.T) {
	m := NewChatModel(testServices())
	m.SetSize(100, 30)
	m.Focus()
	m, _ = m.Update(chartSelectedMsg{id: "chart-1", label: "demo"})

	m = typeChat(m, "/day 2026-09-05")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.IsWaiting() {
		t.Fatal("expected model to be waiting for the day detail")
	}
	if cmd == nil {
		t.Fatal("expected day detail command")
	}

	m, _ = m.Update(dayDetailMsg("wealth  72"))
	if m.IsWaiting() {
		t.Fatal("expected waiting cleared after detail")
	}
	if m.MessageCount() != 2 {
		t.Fatalf("expected pin notice plus detail, got %d messages", m.MessageCount())
	}
}

func TestChatModelDayCommandNeedsChart(t *testing.T) {
	m := NewChatModel(testServices())
	m.SetSize(100, 30)
	m.Focus()

	m = typeChat(m, "/day")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.IsWaiting() {
		t.Fatal("expected no fetch without a pinned chart")
	}
	if cmd != nil {
		t.Fatal("expected no command without a pinned chart")
	}
	if m.MessageCount() != 1 {
		t.Fatalf("expected a usage notice, got %d messages", m.MessageCount())
	}
}

func TestChatModelClearCommand(t *testing.T) {
	svc := testServices()
	stub := svc.Advisor.(*stubAdvisorQuerier)
	m := NewChatModel(svc)
	m.SetSize(100, 30)
	m.Focus()
	m, _ = m.Update(advisorReplyMsg("old reply"))

	m = typeChat(m, "/clear")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !stub.cleared {
		t.Fatal("expected advisor history cleared")
	}
	if m.MessageCount() != 1 {
		t.Fatalf("expected only the cleared notice, got %d messages", m.MessageCount())
	}
}
