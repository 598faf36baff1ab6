package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"nivesh/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password, unique email, and
// PENDING KYC status.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return createUser(t, db, models.KYCStatusPending)
}

// CreateVerifiedUser creates a user whose KYC is VERIFIED, eligible to
// purchase units and register SIPs.
func CreateVerifiedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return createUser(t, db, models.KYCStatusVerified)
}

func createUser(t *testing.T, db *gorm.DB, kyc models.KYCStatus) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:     fmt.Sprintf("user%d@test.com", nextID()),
		Password:  string(hash),
		KYCStatus: kyc,
		IsActive:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestFund creates an active equity fund with the given NAV and a
// unique scheme code. Minimums and exit load use the scheme defaults.
func CreateTestFund(t *testing.T, db *gorm.DB, nav float64) *models.Fund {
	t.Helper()

	n := nextID()
	fund := &models.Fund{
		SchemeCode:         fmt.Sprintf("TST%04d", n),
		Name:               fmt.Sprintf("Test Fund %d", n),
		Category:           models.FundCategoryEquity,
		FundHouse:          "Test AMC",
		NAV:                nav,
		PreviousNAV:        nav,
		NAVDate:            time.Now(),
		MinimumInvestment:  1000,
		SIPMinimum:         500,
		ExitLoadRate:       0.01,
		ExitLoadPeriodDays: 365,
		IsActive:           true,
	}
	if err := db.Create(fund).Error; err != nil {
		t.Fatalf("failed to create test fund: %v", err)
	}
	return fund
}

// CreateTestHolding creates an active holding with the given units and
// average price, valued at the fund's current NAV.
func CreateTestHolding(t *testing.T, db *gorm.DB, userID uint, fund *models.Fund, units, avgPrice float64) *models.PortfolioHolding {
	t.Helper()

	firstPurchase := time.Now().AddDate(-1, 0, 0)
	holding := &models.PortfolioHolding{
		UserID:               userID,
		FundID:               fund.ID,
		UnitsHeld:            units,
		AveragePurchasePrice: avgPrice,
		TotalInvestment:      units * avgPrice,
		CurrentValue:         units * fund.NAV,
		FirstPurchaseDate:    &firstPurchase,
		LastPurchaseDate:     &firstPurchase,
		IsActive:             true,
	}
	if err := db.Create(holding).Error; err != nil {
		t.Fatalf("failed to create test holding: %v", err)
	}
	return holding
}

// CreateTestNAVHistory records a NAV point for a fund on the given date.
func CreateTestNAVHistory(t *testing.T, db *gorm.DB, fundID uint, nav float64, date time.Time) *models.NAVHistory {
	t.Helper()

	record := &models.NAVHistory{
		FundID:     fundID,
		NAV:        nav,
		NAVDate:    date,
		RecordedAt: date,
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("failed to create test NAV history: %v", err)
	}
	return record
}

// CreateTestSIP creates an ACTIVE monthly SIP due on the given date.
func CreateTestSIP(t *testing.T, db *gorm.DB, userID, fundID uint, amount float64, next time.Time) *models.SIP {
	t.Helper()

	sip := &models.SIP{
		UserID:            userID,
		FundID:            fundID,
		Amount:            amount,
		Frequency:         models.SIPFrequencyMonthly,
		DayOfMonth:        next.Day(),
		StartDate:         next,
		Status:            models.SIPStatusActive,
		NextExecutionDate: next,
	}
	if err := db.Create(sip).Error; err != nil {
		t.Fatalf("failed to create test SIP: %v", err)
	}
	return sip
}

// CreateCompletedTransaction records a COMPLETED transaction fact for
// analytics tests.
func CreateCompletedTransaction(t *testing.T, db *gorm.DB, userID, fundID uint, txnType models.TransactionType, units, nav, totalAmount, netAmount float64, date time.Time) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		UserID:          userID,
		FundID:          fundID,
		Type:            txnType,
		Units:           units,
		NAV:             nav,
		TotalAmount:     totalAmount,
		NetAmount:       netAmount,
		Status:          models.TransactionStatusCompleted,
		TransactionDate: date,
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}
