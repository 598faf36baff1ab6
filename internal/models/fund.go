package models

import "time"

// FundCategory represents the investment category of a mutual fund.
type FundCategory string

const (
	FundCategoryEquity FundCategory = "equity"
	FundCategoryDebt   FundCategory = "debt"
	FundCategoryHybrid FundCategory = "hybrid"
	FundCategoryIndex  FundCategory = "index"
	FundCategoryLiquid FundCategory = "liquid"
)

// Fund represents a mutual fund scheme. NAV fields are mutated only by the
// fund service's NAV update entry points so every holding revaluation sees
// a consistent old/new NAV pair.
type Fund struct {
	Base
	SchemeCode        string       `gorm:"not null;uniqueIndex" json:"scheme_code"`
	Name              string       `gorm:"not null" json:"name"`
	Category          FundCategory `gorm:"not null" json:"category"`
	FundHouse         string       `json:"fund_house"`
	NAV               float64      `gorm:"not null" json:"nav"`
	PreviousNAV       float64      `gorm:"not null" json:"previous_nav"`
	NAVDate           time.Time    `json:"nav_date"`
	NAVChange         float64      `json:"nav_change"`
	NAVChangePct      float64      `json:"nav_change_percentage"`
	MinimumInvestment float64      `gorm:"not null;default:1000" json:"minimum_investment"`
	SIPMinimum        float64      `gorm:"not null;default:500" json:"sip_minimum"`
	// Exit load applies when units are redeemed before ExitLoadPeriodDays.
	ExitLoadRate       float64 `gorm:"not null;default:0.01" json:"exit_load_rate"`
	ExitLoadPeriodDays int     `gorm:"not null;default:365" json:"exit_load_period_days"`
	IsActive           bool    `gorm:"default:true" json:"is_active"`
}
