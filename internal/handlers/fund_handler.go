package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "nivesh/internal/errors"
	"nivesh/internal/models"
	"nivesh/internal/pagination"
	"nivesh/internal/services"
)

// FundHandler handles fund registry and NAV update requests.
type FundHandler struct {
	fundService  services.FundServicer
	auditService services.AuditServicer
}

// NewFundHandler creates a new FundHandler.
func NewFundHandler(fundService services.FundServicer, auditService services.AuditServicer) *FundHandler {
	return &FundHandler{fundService: fundService, auditService: auditService}
}

// CreateFundRequest represents the request payload for registering a fund.
type CreateFundRequest struct {
	SchemeCode        string              `json:"scheme_code" binding:"required,min=1,max=20"`
	Name              string              `json:"name" binding:"required,min=1,max=200"`
	Category          models.FundCategory `json:"category" binding:"required,fund_category"`
	FundHouse         string              `json:"fund_house" binding:"max=100"`
	NAV               float64             `json:"nav" binding:"required,gt=0"`
	MinimumInvestment float64             `json:"minimum_investment" binding:"gte=0"`
	SIPMinimum        float64             `json:"sip_minimum" binding:"gte=0"`
}

// UpdateNAVRequest represents the request payload for a single NAV update.
type UpdateNAVRequest struct {
	NAV     float64   `json:"nav" binding:"required"`
	NAVDate time.Time `json:"nav_date" binding:"required"`
}

// UpdateNAVBatchRequest represents the request payload for a bulk NAV update.
type UpdateNAVBatchRequest struct {
	Updates []services.NAVUpdate `json:"updates" binding:"required,min=1,dive"`
}

// CreateFund handles registering a new fund scheme.
// @Summary     Create fund
// @Description Register a new mutual fund scheme
// @Tags        funds
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body CreateFundRequest true "Fund details"
// @Success     201 {object} models.Fund "Fund created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate scheme code"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /internal/funds [post]
func (h *FundHandler) CreateFund(c *gin.Context) {
	var req CreateFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fund, err := h.fundService.CreateFund(req.SchemeCode, req.Name, req.Category, req.FundHouse,
		req.NAV, req.MinimumInvestment, req.SIPMinimum)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(0, "CREATE_FUND", "fund", fund.ID, c.ClientIP(),
		map[string]interface{}{"scheme_code": req.SchemeCode, "nav": req.NAV})

	c.JSON(http.StatusCreated, gin.H{"fund": fund})
}

// ListFunds handles listing funds.
// @Summary     List funds
// @Description Get a paginated list of funds, optionally filtered by category
// @Tags        funds
// @Produce     json
// @Security    BearerAuth
// @Param       category  query string false "Fund category"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Fund] "Paginated funds"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /funds [get]
func (h *FundHandler) ListFunds(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var category *models.FundCategory
	if raw := c.Query("category"); raw != "" {
		cat := models.FundCategory(raw)
		category = &cat
	}

	funds, err := h.fundService.ListFunds(page, category)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, funds)
}

// GetFund handles fetching a single fund.
// @Summary     Get fund
// @Description Get a fund by ID
// @Tags        funds
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Fund ID"
// @Success     200 {object} models.Fund "Fund"
// @Failure     404 {object} ErrorResponse "Fund not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /funds/{id} [get]
func (h *FundHandler) GetFund(c *gin.Context) {
	fundID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	fund, err := h.fundService.GetFundByID(fundID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fund": fund})
}

// UpdateNAV handles a daily NAV update for one fund, cascading the
// revaluation across every active holding.
// @Summary     Update fund NAV
// @Description Apply a fund's daily NAV and revalue all active holdings
// @Tags        funds
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id      path int              true "Fund ID"
// @Param       request body UpdateNAVRequest true "New NAV"
// @Success     200 {object} services.NAVUpdateResult "Update result"
// @Failure     400 {object} ErrorResponse "Invalid NAV"
// @Failure     404 {object} ErrorResponse "Fund not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /internal/funds/{id}/nav [put]
func (h *FundHandler) UpdateNAV(c *gin.Context) {
	fundID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateNAVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.fundService.ApplyNAV(fundID, req.NAV, req.NAVDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(0, "UPDATE_NAV", "fund", fundID, c.ClientIP(),
		map[string]interface{}{"nav": req.NAV, "holdings_updated": result.HoldingsUpdated})

	c.JSON(http.StatusOK, result)
}

// UpdateNAVBatch handles a bulk NAV update with per-item failure isolation.
// @Summary     Update NAVs in bulk
// @Description Apply daily NAVs for multiple funds; failures are reported per item
// @Tags        funds
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body UpdateNAVBatchRequest true "NAV updates"
// @Success     200 {object} services.NAVBatchResult "Batch result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /internal/funds/nav [post]
func (h *FundHandler) UpdateNAVBatch(c *gin.Context) {
	var req UpdateNAVBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result := h.fundService.ApplyNAVBatch(req.Updates)

	h.auditService.Log(0, "UPDATE_NAV_BATCH", "fund", 0, c.ClientIP(),
		map[string]interface{}{"updated": len(result.Updated), "failed": len(result.Failed)})

	c.JSON(http.StatusOK, result)
}
