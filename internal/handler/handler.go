package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"muhurta/internal/rules"
	"muhurta/internal/service"
)

type Handler struct {
	tracer         trace.Tracer
	chartService   *service.ChartService
	outlookService *service.OutlookService
	ruleLoader     *rules.Loader
}

func New(
	tracer trace.Tracer,
	chartService *service.ChartService,
	outlookService *service.OutlookService,
	ruleLoader *rules.Loader,
) *Handler {
	return &Handler{
		tracer:         tracer,
		chartService:   chartService,
		outlookService: outlookService,
		ruleLoader:     ruleLoader,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.POST("/api/charts", h.UploadChart)
	r.GET("/api/charts", h.ListCharts)
	r.GET("/api/charts/:id", h.GetChart)
	r.DELETE("/api/charts/:id", h.DeleteChart)
	r.GET("/api/charts/:id/day", h.GetDayOutlook)
	r.GET("/api/charts/:id/calendar", h.GetCalendar)
	r.GET("/api/charts/:id/calendar/stream", h.StreamCalendar)
	r.POST("/api/rules/reload", h.ReloadRules)
}

// Health godoc
// @Summary      Liveness probe
// @Tags         ops
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReloadRules godoc
// @Summary      Reload the rule catalog override file
// @Description  Re-reads RULES_PATH and publishes a fresh immutable catalog
// @Tags         ops
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/rules/reload [post]
func (h *Handler) ReloadRules(c *gin.Context) {
	if h.ruleLoader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rule loader unavailable"})
		return
	}
	_, span := h.tracer.Start(c.Request.Context(), "handler.reload-rules")
	defer span.End()

	cat := h.ruleLoader.Reload()
	c.JSON(http.StatusOK, gin.H{"status": "reloaded", "version": cat.Version})
}
