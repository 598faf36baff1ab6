package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "nivesh/internal/errors"
	"nivesh/internal/models"
	"nivesh/internal/pagination"
)

// unitsTolerance matches the 0.001 minimum-redemption rule: residuals
// below it are treated as a full exit, and redemptions may exceed the
// held balance by at most this much.
const unitsTolerance = 0.001

// revalueHolding recomputes the valuation fields of a holding from an
// oldNAV/newNAV pair. Invariant: current_value == units_held * newNAV
// after every mutation.
func revalueHolding(h *models.PortfolioHolding, oldNAV, newNAV float64) {
	h.CurrentValue = round2(h.UnitsHeld * newNAV)
	h.UnrealizedGain = round2(h.CurrentValue - h.TotalInvestment)
	if h.TotalInvestment > 0 {
		h.UnrealizedGainPct = round4(h.UnrealizedGain / h.TotalInvestment * 100)
	} else {
		h.UnrealizedGainPct = 0
	}

	previousValue := round2(h.UnitsHeld * oldNAV)
	h.DayGain = round2(h.CurrentValue - previousValue)
	if previousValue > 0 {
		h.DayGainPct = round4(h.DayGain / previousValue * 100)
	} else {
		h.DayGainPct = 0
	}
}

// saveHoldingGuarded persists a mutated holding with an optimistic check on
// the units balance it was read at. Two transactions that read the same row
// cannot both win: the second update matches zero rows and its transaction
// rolls back with ErrConcurrentUpdate instead of silently overwriting the
// first debit or credit. This keeps every mutation scoped to the single
// (user_id, fund_id) row without FOR UPDATE, which the sqlite test driver
// does not speak.
func saveHoldingGuarded(tx *gorm.DB, h *models.PortfolioHolding, unitsAtRead float64) error {
	res := tx.Model(&models.PortfolioHolding{}).
		Where("id = ? AND units_held = ?", h.ID, unitsAtRead).
		Updates(map[string]interface{}{
			"units_held":             h.UnitsHeld,
			"average_purchase_price": h.AveragePurchasePrice,
			"total_investment":       h.TotalInvestment,
			"current_value":          h.CurrentValue,
			"unrealized_gain":        h.UnrealizedGain,
			"unrealized_gain_pct":    h.UnrealizedGainPct,
			"day_gain":               h.DayGain,
			"day_gain_pct":           h.DayGainPct,
			"first_purchase_date":    h.FirstPurchaseDate,
			"last_purchase_date":     h.LastPurchaseDate,
			"is_active":              h.IsActive,
		})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrConcurrentUpdate
	}
	return nil
}

// portfolioService owns holding cost and valuation arithmetic.
type portfolioService struct {
	db *gorm.DB
}

// NewPortfolioService creates a new PortfolioServicer.
func NewPortfolioService(db *gorm.DB) PortfolioServicer {
	return &portfolioService{db: db}
}

// AddPurchase credits purchased units to the (userID, fundID) holding,
// creating it on first purchase and otherwise folding the new lot into the
// weighted-average cost:
//
//	avg' = (total_investment + units*price) / (units_held + units)
//
// Runs on the caller's tx so it joins the purchase transaction.
func (s *portfolioService) AddPurchase(tx *gorm.DB, userID, fundID uint, units, nav float64, date time.Time) (*models.PortfolioHolding, error) {
	var fund models.Fund
	if err := tx.First(&fund, fundID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFundNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	investment := round2(units * nav)

	var holding models.PortfolioHolding
	err := tx.Where("user_id = ? AND fund_id = ?", userID, fundID).First(&holding).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		holding = models.PortfolioHolding{
			UserID:               userID,
			FundID:               fundID,
			UnitsHeld:            round6(units),
			AveragePurchasePrice: round4(nav),
			TotalInvestment:      investment,
			FirstPurchaseDate:    &date,
			LastPurchaseDate:     &date,
			IsActive:             true,
		}
		revalueHolding(&holding, fund.PreviousNAV, fund.NAV)
		if err := tx.Create(&holding).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	default:
		unitsAtRead := holding.UnitsHeld
		newUnits := round6(holding.UnitsHeld + units)
		newInvestment := round2(holding.TotalInvestment + investment)
		holding.AveragePurchasePrice = round4(newInvestment / newUnits)
		holding.UnitsHeld = newUnits
		holding.TotalInvestment = newInvestment
		if holding.FirstPurchaseDate == nil {
			holding.FirstPurchaseDate = &date
		}
		holding.LastPurchaseDate = &date
		// A soft-closed holding reopens on repurchase.
		holding.IsActive = true
		revalueHolding(&holding, fund.PreviousNAV, fund.NAV)
		if err := saveHoldingGuarded(tx, &holding, unitsAtRead); err != nil {
			return nil, err
		}
	}

	return &holding, nil
}

// ApplyRedemption debits redeemed units from the holding. A partial
// redemption recomputes the cost basis pro-rata against the unchanged
// average purchase price; a full redemption (explicit FULL or a residual
// within tolerance) soft-closes the holding, keeping the row for audit.
// The write is guarded on the units balance the holding was read at, so a
// redemption racing another mutation of the same row fails with
// ErrConcurrentUpdate instead of paying out against a stale balance.
func (s *portfolioService) ApplyRedemption(tx *gorm.DB, holding *models.PortfolioHolding, units, nav float64, redemptionType models.RedemptionType) (*models.PortfolioHolding, error) {
	if units > holding.UnitsHeld+unitsTolerance {
		return nil, apperrors.ErrInsufficientUnits
	}

	var fund models.Fund
	if err := tx.First(&fund, holding.FundID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	unitsAtRead := holding.UnitsHeld
	remaining := round6(holding.UnitsHeld - units)
	if redemptionType == models.RedemptionTypeFull || remaining <= unitsTolerance {
		holding.UnitsHeld = 0
		holding.TotalInvestment = 0
		holding.CurrentValue = 0
		holding.UnrealizedGain = 0
		holding.UnrealizedGainPct = 0
		holding.DayGain = 0
		holding.DayGainPct = 0
		holding.IsActive = false
	} else {
		holding.UnitsHeld = remaining
		// Average price is never altered by a redemption; the cost basis
		// shrinks pro-rata with the remaining units.
		holding.TotalInvestment = round2(remaining * holding.AveragePurchasePrice)
		revalueHolding(holding, fund.PreviousNAV, fund.NAV)
	}

	if err := saveHoldingGuarded(tx, holding, unitsAtRead); err != nil {
		return nil, err
	}
	return holding, nil
}

// ReversePurchase is the compensating action for a cancelled purchase:
// it debits the cancelled units without touching the average price. The
// holding soft-closes when nothing remains. The caller guarantees
// exactly-once application via the transaction's reversal guard.
func (s *portfolioService) ReversePurchase(tx *gorm.DB, userID, fundID uint, units float64) error {
	var holding models.PortfolioHolding
	if err := tx.Where("user_id = ? AND fund_id = ?", userID, fundID).First(&holding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Nothing was credited, nothing to reverse.
			return nil
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var fund models.Fund
	if err := tx.First(&fund, fundID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	unitsAtRead := holding.UnitsHeld
	remaining := round6(holding.UnitsHeld - units)
	if remaining <= unitsTolerance {
		holding.UnitsHeld = 0
		holding.TotalInvestment = 0
		holding.CurrentValue = 0
		holding.UnrealizedGain = 0
		holding.UnrealizedGainPct = 0
		holding.DayGain = 0
		holding.DayGainPct = 0
		holding.IsActive = false
	} else {
		holding.UnitsHeld = remaining
		holding.TotalInvestment = round2(remaining * holding.AveragePurchasePrice)
		revalueHolding(&holding, fund.PreviousNAV, fund.NAV)
	}

	return saveHoldingGuarded(tx, &holding, unitsAtRead)
}

// GetHolding returns the active holding for (userID, fundID).
func (s *portfolioService) GetHolding(userID, fundID uint) (*models.PortfolioHolding, error) {
	var holding models.PortfolioHolding
	err := s.db.Where("user_id = ? AND fund_id = ? AND is_active = ?", userID, fundID, true).First(&holding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHoldingNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &holding, nil
}

// GetUserHoldings returns a paginated list of the user's active holdings.
func (s *portfolioService) GetUserHoldings(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.PortfolioHolding], error) {
	page.Defaults()

	base := s.db.Model(&models.PortfolioHolding{}).Where("user_id = ? AND is_active = ?", userID, true)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var holdings []models.PortfolioHolding
	if err := s.db.Preload("Fund").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("current_value DESC").
		Scopes(pagination.Paginate(page)).Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(holdings, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPortfolioSummary aggregates the user's active holdings.
func (s *portfolioService) GetPortfolioSummary(userID uint) (*PortfolioSummary, error) {
	var holdings []models.PortfolioHolding
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &PortfolioSummary{HoldingCount: len(holdings)}
	for i := range holdings {
		summary.TotalInvestment = round2(summary.TotalInvestment + holdings[i].TotalInvestment)
		summary.CurrentValue = round2(summary.CurrentValue + holdings[i].CurrentValue)
		summary.DayGain = round2(summary.DayGain + holdings[i].DayGain)
	}
	summary.UnrealizedGain = round2(summary.CurrentValue - summary.TotalInvestment)
	if summary.TotalInvestment > 0 {
		summary.UnrealizedGainPct = round4(summary.UnrealizedGain / summary.TotalInvestment * 100)
	}

	return summary, nil
}
