package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"

	"muhurta/internal/domain"
)

type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// DigestDispatcher pushes the daily outlook for each subscribed chat's
// chart. A chat subscribes to exactly one chart at a time.
type DigestDispatcher struct {
	sender     messageSender
	dimensions []domain.Dimension

	mu          sync.RWMutex
	subscribers map[int64]string
}

func NewDigestDispatcher(sender messageSender, dimensions []domain.Dimension) *DigestDispatcher {
	if len(dimensions) == 0 {
		dimensions = domain.Dimensions
	}
	return &DigestDispatcher{
		sender:      sender,
		dimensions:  dimensions,
		subscribers: make(map[int64]string),
	}
}

// Subscribe reports false when the chat was already subscribed to the
// same chart.
func (d *DigestDispatcher) Subscribe(chatID int64, chartID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.subscribers[chatID]; ok && existing == chartID {
		return false
	}
	d.subscribers[chatID] = chartID
	return true
}

func (d *DigestDispatcher) Unsubscribe(chatID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.subscribers[chatID]; !ok {
		return false
	}
	delete(d.subscribers, chatID)
	return true
}

func (d *DigestDispatcher) SubscribedChart(chatID int64) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	chartID, ok := d.subscribers[chatID]
	return chartID, ok
}

func (d *DigestDispatcher) SubscriberCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers)
}

// SendDigests scores today for every subscriber and delivers the digest.
// Per-chat failures are collected rather than aborting the broadcast.
func (d *DigestDispatcher) SendDigests(ctx context.Context, outlooks OutlookQuerier) error {
	if d == nil || d.sender == nil || outlooks == nil {
		return nil
	}

	subs := d.snapshotSubscribers()
	if len(subs) == 0 {
		return nil
	}

	today := time.Now().UTC()
	var failures []string
	for _, sub := range subs {
		ds, err := outlooks.DayOutlook(ctx, sub.chartID, today)
		if err != nil {
			failures = append(failures, fmt.Sprintf("chat %d: %v", sub.chatID, err))
			continue
		}
		msg := "Daily outlook digest:\n" + formatDayScore(ds, d.dimensions)
		if _, err := d.sender.Send(&tele.Chat{ID: sub.chatID}, msg); err != nil {
			failures = append(failures, fmt.Sprintf("chat %d: %v", sub.chatID, err))
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("failed sending %d digests: %s", len(failures), strings.Join(failures, "; "))
	}
	return nil
}

type subscription struct {
	chatID  int64
	chartID string
}

func (d *DigestDispatcher) snapshotSubscribers() []subscription {
	d.mu.RLock()
	defer d.mu.RUnlock()

	subs := make([]subscription, 0, len(d.subscribers))
	for chatID, chartID := range d.subscribers {
		subs = append(subs, subscription{chatID: chatID, chartID: chartID})
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].chatID < subs[j].chatID })
	return subs
}

func parseDigestMode(args []string) (string, error) {
	if len(args) == 0 {
		return "status", nil
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "on":
		return "on", nil
	case "off":
		return "off", nil
	case "status":
		return "status", nil
	default:
		return "", fmt.Errorf("invalid mode")
	}
}

func signalGlyph(s domain.Signal) string {
	switch s {
	case domain.SignalGreen:
		return "🟢"
	case domain.SignalYellow:
		return "🟡"
	default:
		return "🔴"
	}
}

func formatDayScore(ds *domain.DayScore, dims []domain.Dimension) string {
	lines := make([]string, 0, len(dims)+6)
	lines = append(lines, fmt.Sprintf("%s %s  index %d (%s)", signalGlyph(ds.Signal), ds.Date, ds.TotalIndex, ds.TaraLabel))
	for _, dim := range dims {
		score, ok := ds.Dimensions[dim]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s: %d", dim, score))
	}
	if ds.Obstruction != nil {
		lines = append(lines, "Note: "+ds.Obstruction.Message)
	}
	if len(ds.SpecialFlags) > 0 {
		lines = append(lines, "Flags: "+strings.Join(ds.SpecialFlags, ", "))
	}
	if len(ds.Do) > 0 {
		lines = append(lines, "Do: "+strings.Join(ds.Do, "; "))
	}
	if len(ds.Avoid) > 0 {
		lines = append(lines, "Avoid: "+strings.Join(ds.Avoid, "; "))
	}
	return strings.Join(lines, "\n")
}
