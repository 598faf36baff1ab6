package services

import (
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"nivesh/internal/analytics"
	apperrors "nivesh/internal/errors"
	"nivesh/internal/logger"
	"nivesh/internal/models"
)

// analyticsService computes portfolio performance from transaction history
// and NAV series. Read-only.
type analyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService creates a new AnalyticsServicer.
func NewAnalyticsService(db *gorm.DB) AnalyticsServicer {
	return &analyticsService{db: db}
}

// periodStart maps a period token to the series cutoff. Unknown tokens and
// "all" mean no cutoff.
func periodStart(period string, now time.Time) *time.Time {
	var start time.Time
	switch period {
	case "1m":
		start = now.AddDate(0, -1, 0)
	case "3m":
		start = now.AddDate(0, -3, 0)
	case "6m":
		start = now.AddDate(0, -6, 0)
	case "1y":
		start = now.AddDate(-1, 0, 0)
	case "3y":
		start = now.AddDate(-3, 0, 0)
	case "5y":
		start = now.AddDate(-5, 0, 0)
	default:
		return nil
	}
	return &start
}

// GetPortfolioPerformance computes XIRR, volatility, Sharpe, drawdown, and
// trailing returns for the user's portfolio. XIRR is money-weighted over
// the full completed transaction history plus the current holding value;
// the risk metrics use the daily value series within the requested period.
// A non-converging XIRR degrades to nil rather than failing the request.
func (s *analyticsService) GetPortfolioPerformance(userID uint, period string) (*PerformanceReport, error) {
	now := time.Now()

	var holdings []models.PortfolioHolding
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	report := &PerformanceReport{}

	report.XIRR = s.computeXIRR(userID, holdings, now)

	series := s.buildValueSeries(userID, holdings, periodStart(period, now))
	if len(series) >= 2 {
		values := make([]float64, len(series))
		for i := range series {
			values[i] = series[i].value
		}
		dailyReturns := analytics.DailyReturns(values)
		report.Volatility = round4(analytics.Volatility(dailyReturns))
		report.Sharpe = round4(analytics.Sharpe(dailyReturns))
		report.MaxDrawdown = round4(analytics.MaxDrawdown(values))
		report.PeriodReturns = trailingReturns(series, now)
	}

	return report, nil
}

// computeXIRR assembles the signed cash-flow history: purchases negative,
// redemption proceeds positive, plus the current holding value as the
// terminal inflow.
func (s *analyticsService) computeXIRR(userID uint, holdings []models.PortfolioHolding, now time.Time) *float64 {
	var transactions []models.Transaction
	if err := s.db.Where("user_id = ? AND status = ?", userID, models.TransactionStatusCompleted).
		Order("transaction_date ASC").Find(&transactions).Error; err != nil {
		logger.Get().Errorw("failed to load transactions for XIRR", "user_id", userID, "error", err)
		return nil
	}

	flows := make([]analytics.CashFlow, 0, len(transactions)+1)
	for i := range transactions {
		txn := &transactions[i]
		switch txn.Type {
		case models.TransactionTypePurchase, models.TransactionTypeSIP:
			flows = append(flows, analytics.CashFlow{Date: txn.TransactionDate, Amount: -txn.TotalAmount})
		case models.TransactionTypeRedemption, models.TransactionTypeDividend:
			flows = append(flows, analytics.CashFlow{Date: txn.TransactionDate, Amount: txn.NetAmount})
		}
	}

	var currentValue float64
	for i := range holdings {
		currentValue += holdings[i].CurrentValue
	}
	if currentValue > 0 {
		flows = append(flows, analytics.CashFlow{Date: now, Amount: currentValue})
	}

	rate, err := analytics.XIRR(flows)
	if err != nil {
		// Soft failure: the caller renders the metric as unavailable.
		logger.Get().Debugw("XIRR unavailable", "user_id", userID, "reason", err)
		return nil
	}

	pct := round4(rate * 100)
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return nil
	}
	return &pct
}

type valuePoint struct {
	date  time.Time
	value float64
}

// buildValueSeries reconstructs the portfolio's daily value from each held
// fund's NAV history, valuing current units at each day's NAV and carrying
// the last known NAV forward across gaps.
func (s *analyticsService) buildValueSeries(userID uint, holdings []models.PortfolioHolding, from *time.Time) []valuePoint {
	if len(holdings) == 0 {
		return nil
	}

	fundIDs := make([]uint, 0, len(holdings))
	unitsByFund := make(map[uint]float64, len(holdings))
	for i := range holdings {
		fundIDs = append(fundIDs, holdings[i].FundID)
		unitsByFund[holdings[i].FundID] = holdings[i].UnitsHeld
	}

	query := s.db.Where("fund_id IN ?", fundIDs)
	if from != nil {
		query = query.Where("nav_date >= ?", *from)
	}
	var history []models.NAVHistory
	if err := query.Order("nav_date ASC").Find(&history).Error; err != nil {
		logger.Get().Errorw("failed to load NAV history", "user_id", userID, "error", err)
		return nil
	}
	if len(history) == 0 {
		return nil
	}

	// Collapse records onto calendar days.
	type dayKey struct{ y, d int }
	navByFundDay := make(map[uint]map[dayKey]float64)
	daySet := make(map[dayKey]time.Time)
	for i := range history {
		h := &history[i]
		key := dayKey{h.NAVDate.Year(), h.NAVDate.YearDay()}
		if navByFundDay[h.FundID] == nil {
			navByFundDay[h.FundID] = make(map[dayKey]float64)
		}
		navByFundDay[h.FundID][key] = h.NAV
		daySet[key] = h.NAVDate
	}

	days := make([]time.Time, 0, len(daySet))
	for _, d := range daySet {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	lastNAV := make(map[uint]float64, len(fundIDs))
	series := make([]valuePoint, 0, len(days))
	for _, day := range days {
		key := dayKey{day.Year(), day.YearDay()}
		var total float64
		for fundID, units := range unitsByFund {
			if nav, ok := navByFundDay[fundID][key]; ok {
				lastNAV[fundID] = nav
			}
			total += units * lastNAV[fundID]
		}
		series = append(series, valuePoint{date: day, value: round2(total)})
	}
	return series
}

// trailingReturns computes simple returns from the nearest series point at
// or before each trailing window boundary.
func trailingReturns(series []valuePoint, now time.Time) PeriodReturns {
	var pr PeriodReturns
	if len(series) == 0 {
		return pr
	}

	latest := series[len(series)-1].value
	if latest <= 0 {
		return pr
	}

	at := func(target time.Time) *float64 {
		var baseline *valuePoint
		for i := range series {
			if series[i].date.After(target) {
				break
			}
			baseline = &series[i]
		}
		if baseline == nil || baseline.value <= 0 {
			return nil
		}
		ret := round4((latest - baseline.value) / baseline.value * 100)
		return &ret
	}

	pr.OneMonth = at(now.AddDate(0, -1, 0))
	pr.ThreeMonth = at(now.AddDate(0, -3, 0))
	pr.SixMonth = at(now.AddDate(0, -6, 0))
	pr.OneYear = at(now.AddDate(-1, 0, 0))
	return pr
}
