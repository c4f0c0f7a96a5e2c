package handler

import (
	"strconv"

	analyticsapp "github.com/expensetracker/backend/internal/application/analytics"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves the read-side analytics endpoints
type AnalyticsHandler struct {
	BaseHandler
	aggregation *analyticsapp.AggregationService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(aggregation *analyticsapp.AggregationService) *AnalyticsHandler {
	return &AnalyticsHandler{aggregation: aggregation}
}

// RegisterRoutes registers analytics routes
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/summary", h.GetSummary)
	rg.GET("/by-category", h.GetCategoryBreakdown)
	rg.GET("/trends", h.GetTrends)
	rg.GET("/budget-status", h.GetBudgetStatus)
}

// GetSummary returns total, count and mean spending for a period.
// start_date and end_date default to the last 30 days.
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	start, err := getQueryDate(c, "start_date")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	end, err := getQueryDate(c, "end_date")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	summary, err := h.aggregation.Summary(c.Request.Context(), userID, start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// GetCategoryBreakdown returns per-category spending for a period
func (h *AnalyticsHandler) GetCategoryBreakdown(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	start, err := getQueryDate(c, "start_date")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	end, err := getQueryDate(c, "end_date")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	breakdown, err := h.aggregation.CategoryBreakdown(c.Request.Context(), userID, start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, breakdown)
}

// GetTrends returns the bucketed spending series. period is daily,
// weekly or monthly (default monthly); days defaults to 30.
func (h *AnalyticsHandler) GetTrends(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	days := 0
	if raw := c.Query("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil {
			h.BadRequest(c, "days must be an integer")
			return
		}
	}

	trends, err := h.aggregation.Trends(c.Request.Context(), userID, c.Query("period"), days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trends)
}

// GetBudgetStatus compares each budget against actual spending
func (h *AnalyticsHandler) GetBudgetStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	statuses, err := h.aggregation.BudgetStatus(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, statuses)
}
