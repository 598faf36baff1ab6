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

// TransactionHandler handles purchase, redemption, and lifecycle requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// PurchaseRequest represents the request payload for buying fund units.
// Exactly one of amount or units must be positive.
type PurchaseRequest struct {
	FundID        uint    `json:"fund_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"gte=0"`
	Units         float64 `json:"units" binding:"gte=0"`
	PaymentMethod string  `json:"payment_method" binding:"required,payment_method"`
}

// RedeemRequest represents the request payload for redeeming fund units.
type RedeemRequest struct {
	FundID         uint                  `json:"fund_id" binding:"required"`
	Units          float64               `json:"units" binding:"gte=0"`
	Amount         float64               `json:"amount" binding:"gte=0"`
	RedemptionType models.RedemptionType `json:"redemption_type" binding:"required,redemption_type"`
}

// CancelTransactionRequest represents the cancellation payload.
type CancelTransactionRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

// ConfirmPaymentRequest represents the payment gateway callback payload.
type ConfirmPaymentRequest struct {
	TransactionID uint   `json:"transaction_id" binding:"required"`
	PaymentStatus string `json:"payment_status" binding:"required,oneof=CONFIRMED FAILED"`
}

// ListTransactionsQuery holds the optional filters for listing transactions.
type ListTransactionsQuery struct {
	pagination.PageRequest
	FromDate *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"to_date" time_format:"2006-01-02"`
	Type     string     `form:"type"`
	Status   string     `form:"status"`
	FundID   *uint      `form:"fund_id"`
}

// Purchase handles buying fund units.
// @Summary     Purchase fund units
// @Description Buy units of a fund by amount or by unit count; charges are computed and payment initiated
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PurchaseRequest true "Purchase details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input or below minimum investment"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "KYC not verified"
// @Failure     404 {object} ErrorResponse "Fund not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/purchase [post]
func (h *TransactionHandler) Purchase(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if (req.Amount > 0) == (req.Units > 0) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Provide exactly one of amount or units"))
		return
	}

	txn, err := h.transactionService.Purchase(c.Request.Context(), services.PurchaseInput{
		UserID:        userID,
		FundID:        req.FundID,
		Amount:        req.Amount,
		Units:         req.Units,
		PaymentMethod: req.PaymentMethod,
		Type:          models.TransactionTypePurchase,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "PURCHASE", "transaction", txn.ID, c.ClientIP(),
		map[string]interface{}{"fund_id": req.FundID, "amount": txn.TotalAmount, "units": txn.Units})

	c.JSON(http.StatusCreated, gin.H{"transaction": txn})
}

// Redeem handles redeeming fund units.
// @Summary     Redeem fund units
// @Description Redeem units of a holding; exit load and STT are deducted, settlement is T+3
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RedeemRequest true "Redemption details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No active holding"
// @Failure     409 {object} ErrorResponse "Insufficient units"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/redeem [post]
func (h *TransactionHandler) Redeem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.RedemptionType == models.RedemptionTypePartial && req.Units <= 0 && req.Amount <= 0 {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Partial redemption requires units or amount"))
		return
	}

	txn, err := h.transactionService.Redeem(c.Request.Context(), services.RedemptionInput{
		UserID:         userID,
		FundID:         req.FundID,
		Units:          req.Units,
		Amount:         req.Amount,
		RedemptionType: req.RedemptionType,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REDEEM", "transaction", txn.ID, c.ClientIP(),
		map[string]interface{}{"fund_id": req.FundID, "units": txn.Units, "net_amount": txn.NetAmount})

	c.JSON(http.StatusCreated, gin.H{"transaction": txn})
}

// Cancel handles cancelling a pending or processing transaction. Cancelling
// an already-cancelled transaction is a conflict, not a repeatable no-op.
// @Summary     Cancel transaction
// @Description Cancel a pending or processing transaction, reversing credited units if any
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                      true "Transaction ID"
// @Param       request body CancelTransactionRequest false "Cancellation reason"
// @Success     200 {object} models.Transaction "Cancelled transaction"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     409 {object} ErrorResponse "Transaction not cancellable"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id}/cancel [post]
func (h *TransactionHandler) Cancel(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txnID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CancelTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	txn, err := h.transactionService.Cancel(userID, txnID, req.Reason)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CANCEL_TRANSACTION", "transaction", txnID, c.ClientIP(),
		map[string]interface{}{"reason": req.Reason})

	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// GetTransaction handles fetching a single transaction.
// @Summary     Get transaction
// @Description Get one of the authenticated user's transactions by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txnID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.transactionService.GetTransactionByID(userID, txnID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// ListTransactions handles listing the user's transactions with filters.
// @Summary     List transactions
// @Description Get the authenticated user's transactions, filtered by date range, type, status, or fund
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       from_date query string false "Start date (YYYY-MM-DD)"
// @Param       to_date   query string false "End date (YYYY-MM-DD)"
// @Param       type      query string false "Transaction type"
// @Param       status    query string false "Transaction status"
// @Param       fund_id   query int    false "Fund ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ListTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.TransactionFilter{
		FromDate: query.FromDate,
		ToDate:   query.ToDate,
		FundID:   query.FundID,
	}
	if query.Type != "" {
		txnType := models.TransactionType(query.Type)
		filter.Type = &txnType
	}
	if query.Status != "" {
		status := models.TransactionStatus(query.Status)
		filter.Status = &status
	}

	txns, err := h.transactionService.GetUserTransactions(userID, query.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, txns)
}

// ConfirmPayment handles the payment gateway's settlement callback. A
// CONFIRMED status credits units and completes the transaction; FAILED marks
// it failed. Repeated callbacks for a completed transaction are no-ops.
// @Summary     Confirm payment
// @Description Payment gateway callback that settles or fails a processing transaction
// @Tags        internal
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body ConfirmPaymentRequest true "Payment outcome"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     409 {object} ErrorResponse "Transaction already finalized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /internal/payments/confirm [post]
func (h *TransactionHandler) ConfirmPayment(c *gin.Context) {
	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	txn, err := h.transactionService.ConfirmPayment(req.TransactionID, req.PaymentStatus)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(txn.UserID, "CONFIRM_PAYMENT", "transaction", txn.ID, c.ClientIP(),
		map[string]interface{}{"payment_status": req.PaymentStatus, "status": txn.Status})

	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}
