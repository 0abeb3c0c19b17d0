package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"muhurta/internal/parser"
	"muhurta/internal/service"
)

type uploadChartRequest struct {
	Report        string `json:"report" binding:"required"`
	Label         string `json:"label"`
	ReferenceDate string `json:"reference_date"`
}

// UploadChart godoc
// @Summary      Parse and store a natal chart report
// @Description  Accepts raw report text, parses it and persists the chart
// @Tags         charts
// @Accept       json
// @Produce      json
// @Param        request  body  uploadChartRequest  true  "Report payload"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      422  {object}  map[string]interface{}
// @Router       /api/charts [post]
func (h *Handler) UploadChart(c *gin.Context) {
	if h.chartService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chart service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.upload-chart")
	defer span.End()

	var req uploadChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "report text is required"})
		return
	}

	referenceDate := time.Now().UTC()
	if raw := strings.TrimSpace(req.ReferenceDate); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reference_date must be YYYY-MM-DD"})
			return
		}
		referenceDate = d
	}

	rec, err := h.chartService.Upload(ctx, req.Report, strings.TrimSpace(req.Label), referenceDate)
	if err != nil {
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": pe.Error(),
				"kind":  string(pe.Kind),
				"field": pe.Field,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.String("chart_id", rec.ID))
	c.JSON(http.StatusCreated, gin.H{"chart": rec})
}

// ListCharts godoc
// @Summary      List stored charts
// @Tags         charts
// @Produce      json
// @Param        limit  query  int  false  "Number of charts (default 50, max 200)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Router       /api/charts [get]
func (h *Handler) ListCharts(c *gin.Context) {
	if h.chartService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chart service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-charts")
	defer span.End()

	limit := 50
	if rawLimit := strings.TrimSpace(c.Query("limit")); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n <= 0 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}

	records, err := h.chartService.List(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"charts": records, "count": len(records)})
}

// GetChart godoc
// @Summary      Fetch one stored chart
// @Tags         charts
// @Produce      json
// @Param        id  path  string  true  "Chart ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /api/charts/{id} [get]
func (h *Handler) GetChart(c *gin.Context) {
	if h.chartService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chart service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-chart")
	defer span.End()

	rec, err := h.chartService.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrChartNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chart not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chart": rec})
}

// DeleteChart godoc
// @Summary      Delete a stored chart and its cached scores
// @Tags         charts
// @Produce      json
// @Param        id  path  string  true  "Chart ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/charts/{id} [delete]
func (h *Handler) DeleteChart(c *gin.Context) {
	if h.chartService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chart service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.delete-chart")
	defer span.End()

	if err := h.chartService.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrChartNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chart not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
