package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tele "gopkg.in/telebot.v3"

	"muhurta/internal/domain"
)

type fakeSender struct {
	messages map[int64][]string
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if f.messages == nil {
		f.messages = make(map[int64][]string)
	}

	chat, ok := to.(*tele.Chat)
	if !ok {
		return nil, fmt.Errorf("unexpected recipient type %T", to)
	}
	f.messages[chat.ID] = append(f.messages[chat.ID], fmt.Sprint(what))
	return &tele.Message{}, nil
}

type fakeOutlooks struct {
	scores map[string]*domain.DayScore
}

func (f *fakeOutlooks) DayOutlook(ctx context.Context, chartID string, date time.Time) (*domain.DayScore, error) {
	ds, ok := f.scores[chartID]
	if !ok {
		return nil, errors.New("chart not found")
	}
	return ds, nil
}

func (f *fakeOutlooks) Calendar(ctx context.Context, chartID string, start time.Time, days int) ([]domain.DayScore, error) {
	ds, ok := f.scores[chartID]
	if !ok {
		return nil, errors.New("chart not found")
	}
	out := make([]domain.DayScore, days)
	for i := range out {
		out[i] = *ds
	}
	return out, nil
}

func sampleScore(date string) *domain.DayScore {
	return &domain.DayScore{
		Date:       date,
		Dimensions: map[domain.Dimension]int{domain.DimensionWealth: 85, domain.DimensionCareer: 80},
		TotalIndex: 80,
		Signal:     domain.SignalGreen,
		TaraLabel:  domain.TaraSampat,
		Do:         []string{"start new work"},
		Avoid:      []string{"nothing in particular"},
	}
}

func TestParseDigestMode(t *testing.T) {
	mode, err := parseDigestMode(nil)
	if err != nil || mode != "status" {
		t.Fatalf("expected default status mode, got mode=%q err=%v", mode, err)
	}

	mode, err = parseDigestMode([]string{"on", "chart-1"})
	if err != nil || mode != "on" {
		t.Fatalf("expected on mode, got mode=%q err=%v", mode, err)
	}

	mode, err = parseDigestMode([]string{"OFF"})
	if err != nil || mode != "off" {
		t.Fatalf("expected off mode, got mode=%q err=%v", mode, err)
	}

	if _, err := parseDigestMode([]string{"nope"}); err == nil {
		t.Fatal("expected invalid mode error")
	}
}

func TestDigestDispatcherSendDigests(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := NewDigestDispatcher(sender, nil)

	if !dispatcher.Subscribe(10, "chart-a") {
		t.Fatal("expected initial subscribe to return true")
	}
	if !dispatcher.Subscribe(20, "chart-a") {
		t.Fatal("expected initial subscribe to return true")
	}
	if dispatcher.Subscribe(10, "chart-a") {
		t.Fatal("expected duplicate subscribe to return false")
	}
	if !dispatcher.Subscribe(10, "chart-b") {
		t.Fatal("expected chart switch to return true")
	}

	outlooks := &fakeOutlooks{scores: map[string]*domain.DayScore{
		"chart-a": sampleScore("2024-03-15"),
		"chart-b": sampleScore("2024-03-15"),
	}}
	if err := dispatcher.SendDigests(context.Background(), outlooks); err != nil {
		t.Fatalf("unexpected digest error: %v", err)
	}
	if len(sender.messages[10]) != 1 || len(sender.messages[20]) != 1 {
		t.Fatalf("expected one message per subscriber, got %+v", sender.messages)
	}
	if !strings.Contains(sender.messages[10][0], "index 80") {
		t.Fatalf("unexpected digest body: %s", sender.messages[10][0])
	}
	if !strings.Contains(sender.messages[10][0], "wealth: 85") {
		t.Fatalf("expected dimension line, got: %s", sender.messages[10][0])
	}
}

func TestDigestDispatcherUnsubscribe(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := NewDigestDispatcher(sender, nil)

	dispatcher.Subscribe(10, "chart-a")
	if !dispatcher.Unsubscribe(10) {
		t.Fatal("expected unsubscribe to return true")
	}
	if dispatcher.Unsubscribe(10) {
		t.Fatal("expected second unsubscribe to return false")
	}

	outlooks := &fakeOutlooks{scores: map[string]*domain.DayScore{"chart-a": sampleScore("2024-03-15")}}
	if err := dispatcher.SendDigests(context.Background(), outlooks); err != nil {
		t.Fatalf("unexpected digest error: %v", err)
	}
	if len(sender.messages) != 0 {
		t.Fatalf("expected zero outgoing messages, got %+v", sender.messages)
	}
}

func TestDigestDispatcherCollectsFailures(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := NewDigestDispatcher(sender, nil)
	dispatcher.Subscribe(10, "missing")
	dispatcher.Subscribe(20, "chart-a")

	outlooks := &fakeOutlooks{scores: map[string]*domain.DayScore{"chart-a": sampleScore("2024-03-15")}}
	err := dispatcher.SendDigests(context.Background(), outlooks)
	if err == nil {
		t.Fatal("expected error for missing chart")
	}
	if !strings.Contains(err.Error(), "chat 10") {
		t.Fatalf("expected failure to name chat 10, got: %v", err)
	}
	if len(sender.messages[20]) != 1 {
		t.Fatal("expected healthy subscriber to still receive digest")
	}
}

func TestFormatDayScoreRestrictsDimensions(t *testing.T) {
	ds := sampleScore("2024-03-15")
	msg := formatDayScore(ds, []domain.Dimension{domain.DimensionWealth})
	if !strings.Contains(msg, "wealth: 85") {
		t.Fatalf("expected wealth line, got: %s", msg)
	}
	if strings.Contains(msg, "career") {
		t.Fatalf("career should be filtered out, got: %s", msg)
	}
}
