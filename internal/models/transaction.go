package models

import "time"

// TransactionType represents the type of fund transaction.
type TransactionType string

const (
	TransactionTypePurchase   TransactionType = "PURCHASE"
	TransactionTypeRedemption TransactionType = "REDEMPTION"
	TransactionTypeSwitch     TransactionType = "SWITCH"
	TransactionTypeDividend   TransactionType = "DIVIDEND"
	TransactionTypeSIP        TransactionType = "SIP"
)

// TransactionStatus represents the lifecycle state of a transaction.
// Status moves forward only: PENDING -> PROCESSING -> {COMPLETED, FAILED},
// with CANCELLED reachable from PENDING/PROCESSING.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "PENDING"
	TransactionStatusProcessing TransactionStatus = "PROCESSING"
	TransactionStatusCompleted  TransactionStatus = "COMPLETED"
	TransactionStatusFailed     TransactionStatus = "FAILED"
	TransactionStatusCancelled  TransactionStatus = "CANCELLED"
)

// RedemptionType distinguishes a partial redemption from a full exit.
type RedemptionType string

const (
	RedemptionTypePartial RedemptionType = "PARTIAL"
	RedemptionTypeFull    RedemptionType = "FULL"
)

// Charges holds the regulatory and operational charges levied on a
// transaction. Total is always the sum of the named components.
type Charges struct {
	STT                float64 `json:"stt"`
	StampDuty          float64 `json:"stamp_duty"`
	GST                float64 `json:"gst"`
	TransactionCharges float64 `json:"transaction_charges"`
	OtherCharges       float64 `json:"other_charges"`
	Total              float64 `json:"total"`
}

// Transaction is a fund purchase, redemption, or SIP installment. Once
// COMPLETED it is an immutable append-only fact.
type Transaction struct {
	Base
	UserID uint            `gorm:"not null;index" json:"user_id"`
	FundID uint            `gorm:"not null;index" json:"fund_id"`
	SIPID  *uint           `gorm:"index" json:"sip_id,omitempty"`
	Type   TransactionType `gorm:"not null" json:"type"`

	Units       float64 `gorm:"not null" json:"units"`
	NAV         float64 `gorm:"not null" json:"nav"`
	TotalAmount float64 `gorm:"not null" json:"total_amount"`
	Charges     Charges `gorm:"embedded;embeddedPrefix:charge_" json:"charges"`
	NetAmount   float64 `gorm:"not null" json:"net_amount"`

	// ExitLoadRate is the load applied on redemption, zero past the
	// fund's exit load period.
	ExitLoadRate float64 `json:"exit_load_rate,omitempty"`

	Status        TransactionStatus `gorm:"not null;default:'PENDING';index" json:"status"`
	PaymentID     string            `json:"payment_id,omitempty"`
	PaymentStatus string            `json:"payment_status,omitempty"`
	PaymentMethod string            `json:"payment_method,omitempty"`

	TransactionDate time.Time  `gorm:"not null" json:"transaction_date"`
	SettlementDate  *time.Time `json:"settlement_date,omitempty"`

	// UnitsCredited records whether this purchase has been applied to the
	// holding; ReversedAt guards the cancellation compensation so it runs
	// exactly once.
	UnitsCredited      bool       `gorm:"default:false" json:"-"`
	ReversedAt         *time.Time `json:"-"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`

	// Relationships
	Fund Fund `gorm:"foreignKey:FundID" json:"fund,omitempty"`
}
