package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/formstamp/formstamp/internal/models"
	"github.com/formstamp/formstamp/internal/repository"
	"github.com/formstamp/formstamp/internal/services"
)

type LogsHandler struct {
	renderLogService *services.RenderLogService
}

func NewLogsHandler(renderLogService *services.RenderLogService) *LogsHandler {
	return &LogsHandler{
		renderLogService: renderLogService,
	}
}

type LogsResponse struct {
	Logs       []models.RenderLog `json:"logs"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// GetRenderLogs returns render activity with pagination, optionally
// filtered by invoice id or outcome.
func (h *LogsHandler) GetRenderLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	if limit > 1000 { // Prevent too large requests
		limit = 1000
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		page = 1
	}

	filter := repository.RenderLogFilter{
		InvoiceID: c.Query("invoice_id"),
		Outcome:   c.Query("outcome"),
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}

	logs, total, err := h.renderLogService.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, LogsResponse{
		Logs:       logs,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	})
}
