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

// SIPHandler handles systematic investment plan requests.
type SIPHandler struct {
	sipService   services.SIPServicer
	auditService services.AuditServicer
}

// NewSIPHandler creates a new SIPHandler.
func NewSIPHandler(sipService services.SIPServicer, auditService services.AuditServicer) *SIPHandler {
	return &SIPHandler{sipService: sipService, auditService: auditService}
}

// RegisterSIPRequest represents the request payload for registering a SIP.
// DayOfMonth applies to MONTHLY and QUARTERLY frequencies and must be 1-28.
type RegisterSIPRequest struct {
	FundID       uint                `json:"fund_id" binding:"required"`
	Amount       float64             `json:"amount" binding:"required,gt=0"`
	Frequency    models.SIPFrequency `json:"frequency" binding:"required,sip_frequency"`
	DayOfMonth   int                 `json:"day_of_month" binding:"gte=0,lte=31"`
	StartDate    time.Time           `json:"start_date" binding:"required"`
	Installments int                 `json:"installments" binding:"gte=0"`
	EndDate      *time.Time          `json:"end_date"`
}

// PauseSIPRequest represents the pause payload.
type PauseSIPRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

// CancelSIPRequest represents the cancellation payload.
type CancelSIPRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

// ExecuteDueRequest represents the scheduler sweep payload. AsOf defaults to
// the current time when omitted.
type ExecuteDueRequest struct {
	AsOf *time.Time `json:"as_of"`
}

// Register handles registering a new SIP.
// @Summary     Register SIP
// @Description Register a systematic investment plan for a fund
// @Tags        sips
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RegisterSIPRequest true "SIP details"
// @Success     201 {object} models.SIP "SIP registered"
// @Failure     400 {object} ErrorResponse "Invalid input or below SIP minimum"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "KYC not verified"
// @Failure     404 {object} ErrorResponse "Fund not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sips [post]
func (h *SIPHandler) Register(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RegisterSIPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	sip, err := h.sipService.Register(userID, req.FundID, req.Amount, req.Frequency,
		req.DayOfMonth, req.StartDate, req.Installments, req.EndDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REGISTER_SIP", "sip", sip.ID, c.ClientIP(),
		map[string]interface{}{"fund_id": req.FundID, "amount": req.Amount, "frequency": req.Frequency})

	c.JSON(http.StatusCreated, gin.H{"sip": sip})
}

// ListSIPs handles listing the user's SIPs.
// @Summary     List SIPs
// @Description Get the authenticated user's SIPs
// @Tags        sips
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.SIP] "Paginated SIPs"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sips [get]
func (h *SIPHandler) ListSIPs(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	sips, err := h.sipService.GetUserSIPs(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sips)
}

// GetSIP handles fetching a single SIP.
// @Summary     Get SIP
// @Description Get one of the authenticated user's SIPs by ID
// @Tags        sips
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "SIP ID"
// @Success     200 {object} models.SIP "SIP"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SIP not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sips/{id} [get]
func (h *SIPHandler) GetSIP(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sipID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	sip, err := h.sipService.GetSIPByID(userID, sipID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sip": sip})
}

// Pause handles pausing an active SIP.
// @Summary     Pause SIP
// @Description Pause an active SIP; the schedule is preserved for resume
// @Tags        sips
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int             true  "SIP ID"
// @Param       request body PauseSIPRequest false "Pause reason"
// @Success     200 {object} models.SIP "Paused SIP"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SIP not found"
// @Failure     409 {object} ErrorResponse "SIP not active"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sips/{id}/pause [post]
func (h *SIPHandler) Pause(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sipID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PauseSIPRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	sip, err := h.sipService.Pause(userID, sipID, req.Reason)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "PAUSE_SIP", "sip", sipID, c.ClientIP(),
		map[string]interface{}{"reason": req.Reason})

	c.JSON(http.StatusOK, gin.H{"sip": sip})
}

// Resume handles resuming a paused SIP.
// @Summary     Resume SIP
// @Description Resume a paused SIP; the next execution date is recomputed from today
// @Tags        sips
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "SIP ID"
// @Success     200 {object} models.SIP "Resumed SIP"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SIP not found"
// @Failure     409 {object} ErrorResponse "SIP not paused"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sips/{id}/resume [post]
func (h *SIPHandler) Resume(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sipID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	sip, err := h.sipService.Resume(userID, sipID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "RESUME_SIP", "sip", sipID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"sip": sip})
}

// Cancel handles cancelling a SIP.
// @Summary     Cancel SIP
// @Description Cancel a SIP permanently; accumulated holdings are unaffected
// @Tags        sips
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int              true  "SIP ID"
// @Param       request body CancelSIPRequest false "Cancellation reason"
// @Success     200 {object} models.SIP "Cancelled SIP"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "SIP not found"
// @Failure     409 {object} ErrorResponse "SIP already terminal"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sips/{id}/cancel [post]
func (h *SIPHandler) Cancel(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sipID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CancelSIPRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	sip, err := h.sipService.Cancel(userID, sipID, req.Reason)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CANCEL_SIP", "sip", sipID, c.ClientIP(),
		map[string]interface{}{"reason": req.Reason})

	c.JSON(http.StatusOK, gin.H{"sip": sip})
}

// ExecuteDue handles the scheduler sweep over due SIP installments. Driven
// by the cron job, not by end users.
// @Summary     Execute due SIPs
// @Description Execute all SIP installments due as of the given time; failures are reported per SIP
// @Tags        internal
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body ExecuteDueRequest false "Sweep time (defaults to now)"
// @Success     200 {object} services.SIPExecutionResult "Sweep result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /internal/sips/execute-due [post]
func (h *SIPHandler) ExecuteDue(c *gin.Context) {
	var req ExecuteDueRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	now := time.Now()
	if req.AsOf != nil {
		now = *req.AsOf
	}

	result, err := h.sipService.ExecuteDue(c.Request.Context(), now)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(0, "EXECUTE_DUE_SIPS", "sip", 0, c.ClientIP(),
		map[string]interface{}{"executed": len(result.Executed), "failed": len(result.Failed)})

	c.JSON(http.StatusOK, result)
}
