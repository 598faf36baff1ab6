package models

import "time"

// NAVHistory is an immutable daily NAV record for a fund — no Base embed,
// no soft deletes. It feeds the performance analytics return series.
type NAVHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FundID     uint      `gorm:"not null;index:idx_nav_history_fund_date" json:"fund_id"`
	NAV        float64   `gorm:"not null" json:"nav"`
	NAVDate    time.Time `gorm:"not null;index:idx_nav_history_fund_date" json:"nav_date"`
	RecordedAt time.Time `gorm:"not null" json:"recorded_at"`
}
