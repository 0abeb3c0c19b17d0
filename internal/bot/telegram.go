package bot

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"muhurta/internal/chart"
	"muhurta/internal/domain"
)

type ChartQuerier interface {
	List(ctx context.Context, limit int) ([]domain.ChartRecord, error)
}

type OutlookQuerier interface {
	DayOutlook(ctx context.Context, chartID string, date time.Time) (*domain.DayScore, error)
	Calendar(ctx context.Context, chartID string, start time.Time, days int) ([]domain.DayScore, error)
}

type Advisor interface {
	Ask(ctx context.Context, chatID int64, message string) (string, error)
}

func StartTelegramBot(chartService ChartQuerier, outlookService OutlookQuerier, advisorService Advisor, digestDims []domain.Dimension) *DigestDispatcher {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}
	digests := NewDigestDispatcher(b, digestDims)

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/charts", func(c tele.Context) error {
		if chartService == nil {
			return c.Send("Chart service unavailable")
		}
		records, err := chartService.List(context.Background(), 20)
		if err != nil {
			return c.Send(fmt.Sprintf("Error listing charts: %v", err))
		}
		if len(records) == 0 {
			return c.Send("No charts stored yet. Upload one via the HTTP API.")
		}
		lines := make([]string, 0, len(records)+1)
		lines = append(lines, "Stored charts:")
		for _, rec := range records {
			label := rec.Label
			if label == "" {
				label = "(unlabelled)"
			}
			lines = append(lines, fmt.Sprintf("%s  %s  lagna %s", rec.ID, label, rec.Chart.Lagna))
		}
		return c.Send(strings.Join(lines, "\n"))
	})

	b.Handle("/today", func(c tele.Context) error {
		if outlookService == nil {
			return c.Send("Outlook service unavailable")
		}
		chartID, err := resolveChartID(c.Args(), digests, c.Chat())
		if err != nil {
			return c.Send("Usage: /today <chart-id> (or /digest on <chart-id> first)")
		}
		ds, err := outlookService.DayOutlook(context.Background(), chartID, time.Now().UTC())
		if err != nil {
			return c.Send(fmt.Sprintf("Error scoring today for %s: %v", chartID, err))
		}
		return c.Send(formatDayScore(ds, digestDims))
	})

	b.Handle("/week", func(c tele.Context) error {
		if outlookService == nil {
			return c.Send("Outlook service unavailable")
		}
		chartID, err := resolveChartID(c.Args(), digests, c.Chat())
		if err != nil {
			return c.Send("Usage: /week <chart-id> (or /digest on <chart-id> first)")
		}
		scores, err := outlookService.Calendar(context.Background(), chartID, time.Now().UTC(), 7)
		if err != nil {
			return c.Send(fmt.Sprintf("Error scoring week for %s: %v", chartID, err))
		}
		lines := make([]string, 0, len(scores)+1)
		lines = append(lines, "Next 7 days:")
		for _, ds := range scores {
			line := fmt.Sprintf("%s %s  index %d", signalGlyph(ds.Signal), ds.Date, ds.TotalIndex)
			if ds.Unusual {
				line += "  (unusual)"
			}
			lines = append(lines, line)
		}
		return c.Send(strings.Join(lines, "\n"))
	})

	renderer := chart.NewRenderer()
	b.Handle("/month", func(c tele.Context) error {
		if outlookService == nil {
			return c.Send("Outlook service unavailable")
		}
		chartID, err := resolveChartID(c.Args(), digests, c.Chat())
		if err != nil {
			return c.Send("Usage: /month <chart-id> (or /digest on <chart-id> first)")
		}
		_ = c.Notify(tele.UploadingPhoto)
		scores, err := outlookService.Calendar(context.Background(), chartID, time.Now().UTC(), 30)
		if err != nil {
			return c.Send(fmt.Sprintf("Error scoring month for %s: %v", chartID, err))
		}
		img, err := renderer.RenderCalendarStrip(scores)
		if err != nil {
			return c.Send(fmt.Sprintf("Error rendering month for %s: %v", chartID, err))
		}
		photo := &tele.Photo{
			File:    tele.FromReader(bytes.NewReader(img.Bytes)),
			Caption: fmt.Sprintf("Next 30 days for chart %s", chartID),
		}
		return c.Send(photo)
	})

	b.Handle("/digest", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}

		args := c.Args()
		mode, err := parseDigestMode(args)
		if err != nil {
			return c.Send("Usage: /digest on <chart-id> | /digest off | /digest status")
		}

		switch mode {
		case "on":
			if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
				return c.Send("Usage: /digest on <chart-id>")
			}
			chartID := strings.TrimSpace(args[1])
			if digests.Subscribe(chat.ID, chartID) {
				return c.Send(fmt.Sprintf("Daily digest enabled for chart %s.", chartID))
			}
			return c.Send(fmt.Sprintf("Daily digest is already enabled for chart %s.", chartID))
		case "off":
			if digests.Unsubscribe(chat.ID) {
				return c.Send("Daily digest disabled for this chat.")
			}
			return c.Send("Daily digest is already disabled for this chat.")
		default:
			if chartID, ok := digests.SubscribedChart(chat.ID); ok {
				return c.Send(fmt.Sprintf("Digest status: ON (chart %s)", chartID))
			}
			return c.Send("Digest status: OFF")
		}
	})

	b.Handle("/ask", func(c tele.Context) error {
		if advisorService == nil {
			return c.Send("Advisor not configured. Set OPENAI_API_KEY to enable.")
		}
		question := strings.TrimSpace(c.Message().Payload)
		if question == "" {
			return c.Send("Usage: /ask <question>\nExample: /ask Should I schedule the signing on Friday?")
		}
		return handleAdvisorQuery(c, advisorService, question)
	})

	b.Handle(tele.OnText, func(c tele.Context) error {
		if advisorService == nil {
			return nil
		}
		text := strings.TrimSpace(c.Text())
		if text == "" {
			return nil
		}
		return handleAdvisorQuery(c, advisorService, text)
	})

	log.Println("Telegram bot started")
	go b.Start()
	return digests
}

// resolveChartID prefers an explicit argument and falls back to the
// chat's digest subscription.
func resolveChartID(args []string, digests *DigestDispatcher, chat *tele.Chat) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	if chat != nil {
		if chartID, ok := digests.SubscribedChart(chat.ID); ok {
			return chartID, nil
		}
	}
	return "", fmt.Errorf("no chart id")
}

func handleAdvisorQuery(c tele.Context, adv Advisor, question string) error {
	_ = c.Notify(tele.Typing)

	reply, err := adv.Ask(context.Background(), c.Chat().ID, question)
	if err != nil {
		log.Printf("advisor error for chat %d: %v", c.Chat().ID, err)
		return c.Send("Sorry, I'm having trouble right now. Try /today or /week for raw scores.")
	}

	if len(reply) > 4000 {
		reply = reply[:4000] + "\n\n[truncated]"
	}

	return c.Send(reply)
}
