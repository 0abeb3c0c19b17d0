package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"

	"muhurta/internal/domain"
	"muhurta/internal/service"
)

const maxCalendarDays = 366

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// outlooks are public per chart id; origin checks belong to the proxy
	CheckOrigin: func(r *http.Request) bool { return true },
}

func parseDateParam(c *gin.Context, name string, fallback time.Time) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, true
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return d, true
}

// GetDayOutlook godoc
// @Summary      Score one day for a chart
// @Description  Returns the five dimension scores, total index and signal
// @Tags         outlook
// @Produce      json
// @Param        id    path   string  true   "Chart ID"
// @Param        date  query  string  false  "Date (YYYY-MM-DD, default today)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/charts/{id}/day [get]
func (h *Handler) GetDayOutlook(c *gin.Context) {
	if h.outlookService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "outlook service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-day-outlook")
	defer span.End()

	date, ok := parseDateParam(c, "date", time.Now().UTC())
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("date", date.Format("2006-01-02")))

	ds, err := h.outlookService.DayOutlook(ctx, c.Param("id"), date)
	if err != nil {
		if errors.Is(err, service.ErrChartNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chart not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"score": ds})
}

// GetCalendar godoc
// @Summary      Score a run of consecutive days
// @Description  Returns day scores with day-over-day deltas and outlier flags
// @Tags         outlook
// @Produce      json
// @Param        id     path   string  true   "Chart ID"
// @Param        start  query  string  false  "Start date (YYYY-MM-DD, default today)"
// @Param        days   query  int     false  "Number of days (default 30, max 366)"  default(30)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/charts/{id}/calendar [get]
func (h *Handler) GetCalendar(c *gin.Context) {
	if h.outlookService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "outlook service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-calendar")
	defer span.End()

	start, ok := parseDateParam(c, "start", time.Now().UTC())
	if !ok {
		return
	}

	days := 30
	if rawDays := strings.TrimSpace(c.Query("days")); rawDays != "" {
		n, err := strconv.Atoi(rawDays)
		if err != nil || n <= 0 || n > maxCalendarDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 366"})
			return
		}
		days = n
	}

	scores, err := h.outlookService.Calendar(ctx, c.Param("id"), start, days)
	if err != nil {
		if errors.Is(err, service.ErrChartNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chart not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"start":    start.Format("2006-01-02"),
		"days":     days,
		"calendar": scores,
	})
}

type streamMessage struct {
	Type  string `json:"type"`
	Day   any    `json:"day,omitempty"`
	Total int    `json:"total,omitempty"`
	Error string `json:"error,omitempty"`
}

// StreamCalendar upgrades to a websocket and pushes each day the moment
// it is scored, then a final done marker. Long calendars reach the client
// incrementally instead of after the whole run has finished.
func (h *Handler) StreamCalendar(c *gin.Context) {
	if h.outlookService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "outlook service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.stream-calendar")
	defer span.End()

	start, ok := parseDateParam(c, "start", time.Now().UTC())
	if !ok {
		return
	}
	days := 30
	if rawDays := strings.TrimSpace(c.Query("days")); rawDays != "" {
		n, err := strconv.Atoi(rawDays)
		if err != nil || n <= 0 || n > maxCalendarDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 366"})
			return
		}
		days = n
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sent := 0
	err = h.outlookService.StreamCalendar(ctx, c.Param("id"), start, days, func(ds domain.DayScore) error {
		sent++
		return conn.WriteJSON(streamMessage{Type: "day", Day: ds})
	})
	if err != nil {
		if errors.Is(err, service.ErrChartNotFound) {
			_ = conn.WriteJSON(streamMessage{Type: "error", Error: "chart not found"})
			return
		}
		_ = conn.WriteJSON(streamMessage{Type: "error", Error: err.Error()})
		return
	}
	_ = conn.WriteJSON(streamMessage{Type: "done", Total: sent})
}
