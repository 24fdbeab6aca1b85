package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kavak-agent/internal/model"
	"kavak-agent/internal/service"
)

// FinanceHandler handles loan plan requests
type FinanceHandler struct {
	settings service.FinanceSettings
}

// NewFinanceHandler creates a new finance handler
func NewFinanceHandler(settings service.FinanceSettings) *FinanceHandler {
	if settings.DefaultTerm <= 0 || len(settings.AllowedTerms) == 0 {
		settings = service.DefaultFinanceSettings()
	}
	return &FinanceHandler{settings: settings}
}

// Plan handles POST /api/v1/finance/plan
func (h *FinanceHandler) Plan(c *gin.Context) {
	var req model.FinancePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.DownPayment >= req.Price {
		c.JSON(http.StatusBadRequest, gin.H{"error": "down_payment must be lower than price"})
		return
	}
	for _, t := range req.Terms {
		if t <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "terms must be positive"})
			return
		}
	}

	rate := h.settings.AnnualRate
	if req.AnnualRate != nil {
		if *req.AnnualRate < 0 || *req.AnnualRate >= 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "annual_rate must be a fraction between 0 and 1"})
			return
		}
		rate = *req.AnnualRate
	}

	c.JSON(http.StatusOK, model.FinancePlanResponse{
		Principal:  req.Price - req.DownPayment,
		AnnualRate: rate,
		Plan:       service.FinancePlan(req.Price, req.DownPayment, req.Terms, rate, h.settings),
	})
}
