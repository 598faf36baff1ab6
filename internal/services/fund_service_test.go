package services

import (
	"testing"
	"time"

	"nivesh/internal/models"
	"nivesh/internal/testutil"
)

func TestCreateFund(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFundService(db, nil)

		fund, err := svc.CreateFund("NIV0001", "Bluechip Equity", models.FundCategoryEquity, "Test AMC", 45.5, 1000, 500)
		testutil.AssertNoError(t, err)

		if fund.ID == 0 {
			t.Fatal("expected non-zero fund ID")
		}
		if fund.NAV != 45.5 || fund.PreviousNAV != 45.5 {
			t.Errorf("expected NAV and previous NAV 45.5, got %v/%v", fund.NAV, fund.PreviousNAV)
		}
		if !fund.IsActive {
			t.Error("expected fund to be active")
		}

		// Launch NAV seeds the history series.
		var count int64
		db.Model(&models.NAVHistory{}).Where("fund_id = ?", fund.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 NAV history record, got %d", count)
		}
	})

	t.Run("duplicate_scheme_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFundService(db, nil)

		_, err := svc.CreateFund("NIV0002", "Fund A", models.FundCategoryDebt, "AMC", 10, 1000, 500)
		testutil.AssertNoError(t, err)
		_, err = svc.CreateFund("NIV0002", "Fund B", models.FundCategoryDebt, "AMC", 10, 1000, 500)
		testutil.AssertAppError(t, err, "DUPLICATE_SCHEME_CODE")
	})

	t.Run("invalid_nav", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFundService(db, nil)

		_, err := svc.CreateFund("NIV0003", "Fund", models.FundCategoryEquity, "AMC", 0, 1000, 500)
		testutil.AssertAppError(t, err, "INVALID_NAV")
	})
}

func TestApplyNAV(t *testing.T) {
	t.Run("cascades_to_holdings", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFundService(db, nil)
		user := testutil.CreateVerifiedUser(t, db)
		fund := testutil.CreateTestFund(t, db, 50)
		testutil.CreateTestHolding(t, db, user.ID, fund, 100, 50)

		result, err := svc.ApplyNAV(fund.ID, 55, time.Now())
		testutil.AssertNoError(t, err)

		if result.HoldingsUpdated != 1 {
			t.Errorf("expected 1 holding updated, got %d", result.HoldingsUpdated)
		}
		if result.Fund.NAV != 55 || result.Fund.PreviousNAV != 50 {
			t.Errorf("expected NAV 55 / previous 50, got %v/%v", result.Fund.NAV, result.Fund.PreviousNAV)
		}
		if result.Fund.NAVChange != 5 {
			t.Errorf("expected NAV change 5, got %v", result.Fund.NAVChange)
		}
		if result.Fund.NAVChangePct != 10 {
			t.Errorf("expected NAV change pct 10, got %v", result.Fund.NAVChangePct)
		}

		var holding models.PortfolioHolding
		if err := db.Where("user_id = ? AND fund_id = ?", user.ID, fund.ID).First(&holding).Error; err != nil {
			t.Fatalf("failed to reload holding: %v", err)
		}
		// Value conservation: current_value == units_held * new NAV.
		if holding.CurrentValue != 5500 {
			t.Errorf("expected current value 5500, got %v", holding.CurrentValue)
		}
		if holding.DayGain != 500 {
			t.Errorf("expected day gain 500, got %v", holding.DayGain)
		}
		if holding.UnrealizedGain != 500 {
			t.Errorf("expected unrealized gain 500, got %v", holding.UnrealizedGain)
		}
	})

	t.Run("skips_inactive_holdings", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFundService(db, nil)
		user := testutil.CreateVerifiedUser(t, db)
		fund := testutil.CreateTestFund(t, db, 50)
		holding := testutil.CreateTestHolding(t, db, user.ID, fund, 100, 50)
		db.Model(holding).Update("is_active", false)

		result, err := svc.ApplyNAV(fund.ID, 55, time.Now())
		testutil.AssertNoError(t, err)
		if result.HoldingsUpdated != 0 {
			t.Errorf("expected 0 holdings updated, got %d", result.HoldingsUpdated)
		}
	})

	t.Run("invalid_nav", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFundService(db, nil)
		fund := testutil.CreateTestFund(t, db, 50)

		_, err := svc.ApplyNAV(fund.ID, -1, time.Now())
		testutil.AssertAppError(t, err, "INVALID_NAV")
	})

	t.Run("fund_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFundService(db, nil)

		_, err := svc.ApplyNAV(99999, 10, time.Now())
		testutil.AssertAppError(t, err, "FUND_NOT_FOUND")
	})

	t.Run("records_history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFundService(db, nil)
		fund := testutil.CreateTestFund(t, db, 50)

		_, err := svc.ApplyNAV(fund.ID, 51, time.Now())
		testutil.AssertNoError(t, err)
		_, err = svc.ApplyNAV(fund.ID, 52, time.Now())
		testutil.AssertNoError(t, err)

		var count int64
		db.Model(&models.NAVHistory{}).Where("fund_id = ?", fund.ID).Count(&count)
		if count != 2 {
			t.Errorf("expected 2 NAV history records, got %d", count)
		}
	})
}

func TestApplyNAVBatch(t *testing.T) {
	t.Run("isolates_failures", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFundService(db, nil)
		fund := testutil.CreateTestFund(t, db, 50)

		result := svc.ApplyNAVBatch([]NAVUpdate{
			{FundID: fund.ID, NAV: 52, NAVDate: time.Now()},
			{FundID: 99999, NAV: 10, NAVDate: time.Now()},
			{FundID: fund.ID, NAV: -5, NAVDate: time.Now()},
		})

		if len(result.Updated) != 1 {
			t.Errorf("expected 1 update, got %d", len(result.Updated))
		}
		if len(result.Failed) != 2 {
			t.Errorf("expected 2 failures, got %d", len(result.Failed))
		}

		reloaded, err := svc.GetFundByID(fund.ID)
		testutil.AssertNoError(t, err)
		if reloaded.NAV != 52 {
			t.Errorf("expected surviving update to apply NAV 52, got %v", reloaded.NAV)
		}
	})
}
