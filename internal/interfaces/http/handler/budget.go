package handler

import (
	analyticsapp "github.com/expensetracker/backend/internal/application/analytics"
	"github.com/gin-gonic/gin"
)

// BudgetHandler serves budget creation and listing
type BudgetHandler struct {
	BaseHandler
	budgets *analyticsapp.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgets *analyticsapp.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgets: budgets}
}

// RegisterRoutes registers budget routes
func (h *BudgetHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/budget", h.CreateBudget)
	rg.GET("/budget", h.ListBudgets)
}

// CreateBudget creates a budget for the calling user
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req analyticsapp.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	budget, err := h.budgets.CreateBudget(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, budget)
}

// ListBudgets returns all budgets owned by the calling user
func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	budgets, err := h.budgets.ListBudgets(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, budgets)
}
