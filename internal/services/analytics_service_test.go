package services

import (
	"math"
	"testing"
	"time"

	"nivesh/internal/models"
	"nivesh/internal/testutil"
)

func TestGetPortfolioPerformance(t *testing.T) {
	t.Run("xirr_single_purchase", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAnalyticsService(db)
		user := testutil.CreateVerifiedUser(t, db)
		fund := testutil.CreateTestFund(t, db, 110)

		// 10000 invested a year ago, worth 11000 today: XIRR ~10%.
		testutil.CreateCompletedTransaction(t, db, user.ID, fund.ID, models.TransactionTypePurchase,
			100, 100, 10000, 10000, time.Now().AddDate(0, 0, -365))
		testutil.CreateTestHolding(t, db, user.ID, fund, 100, 100)

		report, err := svc.GetPortfolioPerformance(user.ID, "1y")
		testutil.AssertNoError(t, err)

		if report.XIRR == nil {
			t.Fatal("expected XIRR to be available")
		}
		if math.Abs(*report.XIRR-10) > 0.1 {
			t.Errorf("expected XIRR ~10%%, got %v", *report.XIRR)
		}
	})

	t.Run("xirr_unavailable_without_inflows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAnalyticsService(db)
		user := testutil.CreateVerifiedUser(t, db)
		fund := testutil.CreateTestFund(t, db, 100)

		// A purchase with no current value and no redemptions has flows in
		// one direction only.
		testutil.CreateCompletedTransaction(t, db, user.ID, fund.ID, models.TransactionTypePurchase,
			100, 100, 10000, 10000, time.Now().AddDate(0, 0, -30))

		report, err := svc.GetPortfolioPerformance(user.ID, "1y")
		testutil.AssertNoError(t, err)
		if report.XIRR != nil {
			t.Errorf("expected XIRR to degrade to nil, got %v", *report.XIRR)
		}
	})

	t.Run("risk_metrics_from_nav_series", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAnalyticsService(db)
		user := testutil.CreateVerifiedUser(t, db)
		fund := testutil.CreateTestFund(t, db, 104)
		testutil.CreateTestHolding(t, db, user.ID, fund, 10, 100)

		now := time.Now()
		navs := []float64{100, 102, 98, 101, 104}
		for i, nav := range navs {
			testutil.CreateTestNAVHistory(t, db, fund.ID, nav, now.AddDate(0, 0, i-len(navs)))
		}

		report, err := svc.GetPortfolioPerformance(user.ID, "1m")
		testutil.AssertNoError(t, err)

		if report.Volatility <= 0 {
			t.Errorf("expected positive volatility, got %v", report.Volatility)
		}
		// Peak 1020, trough 980.
		if math.Abs(report.MaxDrawdown-3.9216) > 0.01 {
			t.Errorf("expected max drawdown ~3.92, got %v", report.MaxDrawdown)
		}
	})

	t.Run("empty_portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAnalyticsService(db)
		user := testutil.CreateVerifiedUser(t, db)

		report, err := svc.GetPortfolioPerformance(user.ID, "all")
		testutil.AssertNoError(t, err)

		if report.XIRR != nil {
			t.Error("expected no XIRR for an empty portfolio")
		}
		if report.Volatility != 0 || report.Sharpe != 0 || report.MaxDrawdown != 0 {
			t.Errorf("expected zeroed risk metrics, got %+v", report)
		}
	})

	t.Run("trailing_returns", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAnalyticsService(db)
		user := testutil.CreateVerifiedUser(t, db)
		fund := testutil.CreateTestFund(t, db, 110)
		testutil.CreateTestHolding(t, db, user.ID, fund, 10, 100)

		now := time.Now()
		testutil.CreateTestNAVHistory(t, db, fund.ID, 100, now.AddDate(0, -2, 0))
		testutil.CreateTestNAVHistory(t, db, fund.ID, 105, now.AddDate(0, -1, -1))
		testutil.CreateTestNAVHistory(t, db, fund.ID, 110, now)

		report, err := svc.GetPortfolioPerformance(user.ID, "1y")
		testutil.AssertNoError(t, err)

		if report.PeriodReturns.OneMonth == nil {
			t.Fatal("expected one-month return")
		}
		// Baseline 1050 a month ago, 1100 now.
		if math.Abs(*report.PeriodReturns.OneMonth-4.7619) > 0.01 {
			t.Errorf("expected one-month return ~4.76, got %v", *report.PeriodReturns.OneMonth)
		}
		if report.PeriodReturns.OneYear != nil {
			t.Error("expected no one-year return for a two-month series")
		}
	})
}
