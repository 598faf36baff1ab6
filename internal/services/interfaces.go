package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"nivesh/internal/models"
	"nivesh/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	RecordLogin(user *models.User)
	SetKYCStatus(userID uint, status models.KYCStatus) (*models.User, error)
}

// NAVUpdate is a single entry in a bulk NAV update.
type NAVUpdate struct {
	FundID  uint      `json:"fund_id"`
	NAV     float64   `json:"nav"`
	NAVDate time.Time `json:"nav_date"`
}

// NAVUpdateResult reports the outcome of applying one NAV update.
type NAVUpdateResult struct {
	Fund            *models.Fund `json:"fund"`
	HoldingsUpdated int          `json:"holdings_updated"`
}

// NAVBatchFailure records a failed entry of a bulk NAV update.
type NAVBatchFailure struct {
	FundID uint   `json:"fund_id"`
	Reason string `json:"reason"`
}

// NAVBatchResult separates per-item successes and failures of a bulk NAV
// update; a malformed entry never aborts the rest of the batch.
type NAVBatchResult struct {
	Updated []NAVUpdateResult `json:"updated"`
	Failed  []NAVBatchFailure `json:"failed"`
}

// FundServicer defines the contract for fund registry and NAV updates.
type FundServicer interface {
	CreateFund(schemeCode, name string, category models.FundCategory, fundHouse string, nav, minimumInvestment, sipMinimum float64) (*models.Fund, error)
	GetFundByID(fundID uint) (*models.Fund, error)
	ListFunds(page pagination.PageRequest, category *models.FundCategory) (*pagination.PageResponse[models.Fund], error)
	ApplyNAV(fundID uint, nav float64, navDate time.Time) (*NAVUpdateResult, error)
	ApplyNAVBatch(items []NAVUpdate) *NAVBatchResult
}

// PortfolioSummary aggregates a user's holdings into portfolio totals.
type PortfolioSummary struct {
	TotalInvestment   float64 `json:"total_investment"`
	CurrentValue      float64 `json:"current_value"`
	UnrealizedGain    float64 `json:"unrealized_gain"`
	UnrealizedGainPct float64 `json:"unrealized_gain_percentage"`
	DayGain           float64 `json:"day_gain"`
	HoldingCount      int     `json:"holding_count"`
}

// PortfolioServicer owns the weighted-average-cost and valuation fields of
// holdings. Mutating methods take the caller's *gorm.DB so they join the
// caller's transaction.
type PortfolioServicer interface {
	AddPurchase(tx *gorm.DB, userID, fundID uint, units, nav float64, date time.Time) (*models.PortfolioHolding, error)
	ApplyRedemption(tx *gorm.DB, holding *models.PortfolioHolding, units, nav float64, redemptionType models.RedemptionType) (*models.PortfolioHolding, error)
	ReversePurchase(tx *gorm.DB, userID, fundID uint, units float64) error
	GetHolding(userID, fundID uint) (*models.PortfolioHolding, error)
	GetUserHoldings(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.PortfolioHolding], error)
	GetPortfolioSummary(userID uint) (*PortfolioSummary, error)
}

// PurchaseInput carries a purchase request. Exactly one of Amount or Units
// must be positive; the other is derived from the fund's NAV.
type PurchaseInput struct {
	UserID        uint
	FundID        uint
	Amount        float64
	Units         float64
	PaymentMethod string
	Type          models.TransactionType
	SIPID         *uint
}

// RedemptionInput carries a redemption request. Either Units or Amount may
// be supplied; RedemptionType FULL redeems the whole holding.
type RedemptionInput struct {
	UserID         uint
	FundID         uint
	Units          float64
	Amount         float64
	RedemptionType models.RedemptionType
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Type     *models.TransactionType
	Status   *models.TransactionStatus
	FundID   *uint
}

// TransactionServicer drives purchases and redemptions through the charge
// pipeline and the status state machine.
type TransactionServicer interface {
	Purchase(ctx context.Context, input PurchaseInput) (*models.Transaction, error)
	Redeem(ctx context.Context, input RedemptionInput) (*models.Transaction, error)
	ConfirmPayment(transactionID uint, paymentStatus string) (*models.Transaction, error)
	Cancel(userID, transactionID uint, reason string) (*models.Transaction, error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

// SIPExecutionResult reports the outcome of one due-SIP sweep.
type SIPExecutionResult struct {
	Executed []uint            `json:"executed"`
	Failed   []SIPBatchFailure `json:"failed"`
}

// SIPBatchFailure records a SIP whose installment could not be executed.
type SIPBatchFailure struct {
	SIPID  uint   `json:"sip_id"`
	Reason string `json:"reason"`
}

// SIPServicer manages systematic investment plan schedules and state.
type SIPServicer interface {
	Register(userID, fundID uint, amount float64, frequency models.SIPFrequency, dayOfMonth int, startDate time.Time, installments int, endDate *time.Time) (*models.SIP, error)
	GetSIPByID(userID, sipID uint) (*models.SIP, error)
	GetUserSIPs(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.SIP], error)
	Pause(userID, sipID uint, reason string) (*models.SIP, error)
	Resume(userID, sipID uint) (*models.SIP, error)
	Cancel(userID, sipID uint, reason string) (*models.SIP, error)
	ExecuteDue(ctx context.Context, now time.Time) (*SIPExecutionResult, error)
}

// PeriodReturns holds trailing returns over standard windows, as
// percentages. Nil when the series does not reach back far enough.
type PeriodReturns struct {
	OneMonth   *float64 `json:"one_month,omitempty"`
	ThreeMonth *float64 `json:"three_month,omitempty"`
	SixMonth   *float64 `json:"six_month,omitempty"`
	OneYear    *float64 `json:"one_year,omitempty"`
}

// PerformanceReport is the analytics output for a user's portfolio.
// XIRR is nil when the solver did not converge; callers render "N/A".
type PerformanceReport struct {
	XIRR          *float64      `json:"xirr,omitempty"`
	Volatility    float64       `json:"volatility"`
	Sharpe        float64       `json:"sharpe"`
	MaxDrawdown   float64       `json:"max_drawdown"`
	PeriodReturns PeriodReturns `json:"period_returns"`
}

// AnalyticsServicer computes performance metrics from transaction history
// and NAV series. Read-only; it never mutates state.
type AnalyticsServicer interface {
	GetPortfolioPerformance(userID uint, period string) (*PerformanceReport, error)
}

// PaymentResult is the opaque outcome of initiating a payment.
type PaymentResult struct {
	PaymentID string
	Status    string
}

// PaymentGateway initiates payments with an external provider. The call is
// bounded by the caller's context; on timeout the transaction stays PENDING
// for reconciliation.
type PaymentGateway interface {
	Initiate(ctx context.Context, amount float64, method, account string) (*PaymentResult, error)
}

// NotificationService delivers user notifications. Fire-and-forget:
// failures are logged, never propagated.
type NotificationService interface {
	Send(template string, context map[string]any)
}

// CacheInvalidator clears cached read models. Fire-and-forget: correctness
// never depends on it firing or succeeding.
type CacheInvalidator interface {
	ClearPattern(pattern string)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
