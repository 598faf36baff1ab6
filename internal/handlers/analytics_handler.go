package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "nivesh/internal/errors"
	"nivesh/internal/services"
)

// AnalyticsHandler handles portfolio performance requests.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// PerformanceQuery holds the optional analysis period.
type PerformanceQuery struct {
	Period string `form:"period" binding:"omitempty,performance_period"`
}

// GetPerformance handles the portfolio performance request.
// @Summary     Portfolio performance
// @Description Get XIRR, volatility, Sharpe ratio, max drawdown, and trailing returns for the portfolio
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "Analysis period: 1m, 3m, 6m, 1y, 3y, 5y, all (default 1y)"
// @Success     200 {object} services.PerformanceReport "Performance report"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/performance [get]
func (h *AnalyticsHandler) GetPerformance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query PerformanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if query.Period == "" {
		query.Period = "1y"
	}

	report, err := h.analyticsService.GetPortfolioPerformance(userID, query.Period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
