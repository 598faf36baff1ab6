package models

import "time"

// PortfolioHolding is a user's position in a single fund, unique per
// (user_id, fund_id). Valuation fields are recomputed on every mutation:
// current_value == units_held * fund.nav is an invariant, never stored stale.
// A fully redeemed holding is soft-closed (is_active=false) and kept for
// audit history.
type PortfolioHolding struct {
	Base
	UserID uint `gorm:"not null;uniqueIndex:uq_holdings_user_fund" json:"user_id"`
	FundID uint `gorm:"not null;uniqueIndex:uq_holdings_user_fund" json:"fund_id"`

	// UnitsHeld carries 6-decimal precision.
	UnitsHeld            float64 `gorm:"not null" json:"units_held"`
	AveragePurchasePrice float64 `gorm:"not null" json:"average_purchase_price"`
	TotalInvestment      float64 `gorm:"not null" json:"total_investment"`
	CurrentValue         float64 `gorm:"not null" json:"current_value"`
	UnrealizedGain       float64 `json:"unrealized_gain"`
	UnrealizedGainPct    float64 `json:"unrealized_gain_percentage"`
	DayGain              float64 `json:"day_gain"`
	DayGainPct           float64 `json:"day_gain_percentage"`

	FirstPurchaseDate *time.Time `json:"first_purchase_date,omitempty"`
	LastPurchaseDate  *time.Time `json:"last_purchase_date,omitempty"`
	IsActive          bool       `gorm:"default:true" json:"is_active"`

	// Relationships
	Fund Fund `gorm:"foreignKey:FundID" json:"fund,omitempty"`
}
