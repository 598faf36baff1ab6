package models

import "time"

// SIPFrequency represents how often a systematic investment plan executes.
type SIPFrequency string

const (
	SIPFrequencyDaily     SIPFrequency = "DAILY"
	SIPFrequencyWeekly    SIPFrequency = "WEEKLY"
	SIPFrequencyMonthly   SIPFrequency = "MONTHLY"
	SIPFrequencyQuarterly SIPFrequency = "QUARTERLY"
)

// SIPStatus represents the state of a systematic investment plan.
// Transitions: ACTIVE<->PAUSED, ACTIVE->CANCELLED, ACTIVE->COMPLETED,
// any->FAILED (terminal, on payment failure).
type SIPStatus string

const (
	SIPStatusActive    SIPStatus = "ACTIVE"
	SIPStatusPaused    SIPStatus = "PAUSED"
	SIPStatusCompleted SIPStatus = "COMPLETED"
	SIPStatusCancelled SIPStatus = "CANCELLED"
	SIPStatusFailed    SIPStatus = "FAILED"
)

// SIP is a recurring scheduled purchase of fund units. The running
// aggregates (total_invested, total_units, average_nav) are updated only
// by successfully completed installment transactions.
type SIP struct {
	Base
	UserID uint `gorm:"not null;index" json:"user_id"`
	FundID uint `gorm:"not null;index" json:"fund_id"`

	Amount    float64      `gorm:"not null" json:"amount"`
	Frequency SIPFrequency `gorm:"not null" json:"frequency"`
	// DayOfMonth applies to MONTHLY/QUARTERLY plans only, limited to 1-28
	// so every month has the scheduled day.
	DayOfMonth int `json:"day_of_month,omitempty"`

	StartDate time.Time  `gorm:"not null" json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	// Installments is the total planned count; zero means unbounded.
	Installments          int `json:"installments,omitempty"`
	CompletedInstallments int `gorm:"default:0" json:"completed_installments"`

	Status            SIPStatus  `gorm:"not null;default:'ACTIVE';index" json:"status"`
	NextExecutionDate time.Time  `gorm:"not null;index" json:"next_execution_date"`
	LastExecutedDate  *time.Time `json:"last_executed_date,omitempty"`

	TotalInvested float64 `gorm:"default:0" json:"total_invested"`
	TotalUnits    float64 `gorm:"default:0" json:"total_units"`
	AverageNAV    float64 `gorm:"default:0" json:"average_nav"`

	PauseReason   string `json:"pause_reason,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`

	// Relationships
	Fund Fund `gorm:"foreignKey:FundID" json:"fund,omitempty"`
}
