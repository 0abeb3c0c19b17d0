package advisor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/trace"

	"muhurta/internal/domain"
)

const systemPrompt = "You are a concise assistant for a Vedic daily-outlook service. " +
	"You explain tara bala labels, gochara transits and dasha periods in plain language, " +
	"and you always remind users that scores are guidance, not prediction. " +
	"When day scores are provided, ground your answer in them."

type OutlookQuerier interface {
	DayOutlook(ctx context.Context, chartID string, date time.Time) (*domain.DayScore, error)
}

type completionClient interface {
	Complete(ctx context.Context, model string, messages []openai.ChatCompletionMessageParamUnion) (string, error)
}

type openaiCompleter struct {
	client openai.Client
}

func (c *openaiCompleter) Complete(ctx context.Context, model string, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

type turn struct {
	role    string
	content string
}

// Service answers free-form questions per chat, keeping a bounded
// conversation history and optionally pinning a chart whose today-score
// is injected into the prompt.
type Service struct {
	tracer     trace.Tracer
	completer  completionClient
	outlooks   OutlookQuerier
	model      string
	maxHistory int

	mu      sync.Mutex
	history map[int64][]turn
	charts  map[int64]string
}

// New returns nil when OPENAI_API_KEY is not set; callers treat a nil
// advisor as the feature being disabled.
func New(tracer trace.Tracer, outlooks OutlookQuerier, model string, maxHistory int) *Service {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("OPENAI_API_KEY not set, advisor disabled")
		return nil
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return newService(tracer, &openaiCompleter{client: client}, outlooks, model, maxHistory)
}

func newService(tracer trace.Tracer, completer completionClient, outlooks OutlookQuerier, model string, maxHistory int) *Service {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &Service{
		tracer:     tracer,
		completer:  completer,
		outlooks:   outlooks,
		model:      model,
		maxHistory: maxHistory,
		history:    make(map[int64][]turn),
		charts:     make(map[int64]string),
	}
}

// PinChart attaches a chart to a chat so later questions are answered
// against that chart's current day score.
func (s *Service) PinChart(chatID int64, chartID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chartID == "" {
		delete(s.charts, chatID)
		return
	}
	s.charts[chatID] = chartID
}

func (s *Service) Ask(ctx context.Context, chatID int64, message string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "advisor.ask")
	defer span.End()

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
	}
	if scoreCtx := s.scoreContext(ctx, chatID); scoreCtx != "" {
		messages = append(messages, openai.SystemMessage(scoreCtx))
	}
	for _, t := range s.snapshotHistory(chatID) {
		if t.role == "user" {
			messages = append(messages, openai.UserMessage(t.content))
		} else {
			messages = append(messages, openai.AssistantMessage(t.content))
		}
	}
	messages = append(messages, openai.UserMessage(message))

	reply, err := s.completer.Complete(ctx, s.model, messages)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	s.recordTurns(chatID, message, reply)
	return reply, nil
}

// ClearHistory drops the conversation for one chat.
func (s *Service) ClearHistory(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, chatID)
}

func (s *Service) scoreContext(ctx context.Context, chatID int64) string {
	s.mu.Lock()
	chartID := s.charts[chatID]
	s.mu.Unlock()
	if chartID == "" || s.outlooks == nil {
		return ""
	}

	ds, err := s.outlooks.DayOutlook(ctx, chartID, time.Now().UTC())
	if err != nil {
		log.Printf("advisor could not load outlook for chart %s: %v", chartID, err)
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Today's outlook for the user's chart (%s): signal %s, total index %d, tara %s.",
		ds.Date, ds.Signal, ds.TotalIndex, ds.TaraLabel)
	for _, dim := range domain.Dimensions {
		if score, ok := ds.Dimensions[dim]; ok {
			fmt.Fprintf(&b, " %s=%d.", dim, score)
		}
	}
	if ds.Obstruction != nil {
		b.WriteString(" Obstruction: " + ds.Obstruction.Message)
	}
	return b.String()
}

func (s *Service) snapshotHistory(chatID int64) []turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]turn, len(s.history[chatID]))
	copy(out, s.history[chatID])
	return out
}

func (s *Service) recordTurns(chatID int64, question, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := append(s.history[chatID], turn{role: "user", content: question}, turn{role: "assistant", content: reply})
	if len(h) > s.maxHistory {
		h = h[len(h)-s.maxHistory:]
	}
	s.history[chatID] = h
}
