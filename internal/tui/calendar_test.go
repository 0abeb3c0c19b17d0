package tui

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func loadedCalendar(t *testing.T, days int) CalendarModel {
	t.Helper()
	m := NewCalendarModel(testServices())
	m.SetSize(120, 40)
	m, _ = m.Update(firstChartMsg{id: "chart-1", label: "demo"})
	m, _ = m.Update(calendarMsg{chartID: "chart-1", scores: sampleScores(days)})
	return m
}

func TestCalendarModelLoadsFirstChart(t *testing.T) {
	m := NewCalendarModel(testServices())

	msg := m.Init()()
	first, ok := msg.(firstChartMsg)
	if !ok {
		t.Fatalf("expected firstChartMsg, got %T", msg)
	}
	if first.id != "chart-1" {
		t.Fatalf("expected chart-1, got %q", first.id)
	}

	m, cmd := m.Update(first)
	if m.ChartID() != "chart-1" {
		t.Fatalf("expected chart-1 selected, got %q", m.ChartID())
	}
	if cmd == nil {
		t.Fatal("expected a calendar fetch command after chart selection")
	}

	fetched := cmd()
	cal, ok := fetched.(calendarMsg)
	if !ok {
		t.Fatalf("expected calendarMsg, got %T", fetched)
	}
	m, _ = m.Update(cal)
	if m.ScoreCount() != 14 {
		t.Fatalf("expected 14 scored days, got %d", m.ScoreCount())
	}
}

func TestCalendarModelCursorNavigation(t *testing.T) {
	m := loadedCalendar(t, 14)

	right := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}}
	left := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}}
	down := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	up := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}

	m, _ = m.Update(right)
	m, _ = m.Update(right)
	if m.Cursor() != 2 {
		t.Fatalf("expected cursor 2, got %d", m.Cursor())
	}

	m, _ = m.Update(down)
	if m.Cursor() != 9 {
		t.Fatalf("expected cursor 9 after week down, got %d", m.Cursor())
	}

	m, _ = m.Update(up)
	m, _ = m.Update(left)
	if m.Cursor() != 1 {
		t.Fatalf("expected cursor 1, got %d", m.Cursor())
	}
}

func TestCalendarModelCursorStaysInBounds(t *testing.T) {
	m := loadedCalendar(t, 5)

	left := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}}
	m, _ = m.Update(left)
	if m.Cursor() != 0 {
		t.Fatalf("expected cursor pinned at 0, got %d", m.Cursor())
	}

	right := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}}
	for i := 0; i < 10; i++ {
		m, _ = m.Update(right)
	}
	if m.Cursor() != 4 {
		t.Fatalf("expected cursor pinned at 4, got %d", m.Cursor())
	}

	down := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	m, _ = m.Update(down)
	if m.Cursor() != 4 {
		t.Fatalf("expected week down past end to stay at 4, got %d", m.Cursor())
	}
}

func TestCalendarModelIgnoresStaleCalendar(t *testing.T) {
	m := loadedCalendar(t, 14)

	m, _ = m.Update(chartSelectedMsg{id: "chart-2", label: "other"})
	m, _ = m.Update(calendarMsg{chartID: "chart-1", scores: sampleScores(3)})
	if m.ScoreCount() != 14 {
		t.Fatalf("expected stale calendar to be dropped, got %d days", m.ScoreCount())
	}
}

func TestCalendarModelErrorView(t *testing.T) {
	m := NewCalendarModel(testServices())
	m.SetSize(120, 40)
	m, _ = m.Update(calendarErrMsg{err: fmt.Errorf("boom")})

	view := m.View()
	if view == "" {
		t.Fatal("expected error view")
	}
}

func TestCalendarModelViewRendersDetail(t *testing.T) {
	m := loadedCalendar(t, 14)
	view := m.View()
	if view == "" {
		t.Fatal("expected rendered calendar view")
	}
}
