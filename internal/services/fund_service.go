package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "nivesh/internal/errors"
	"nivesh/internal/logger"
	"nivesh/internal/models"
	"nivesh/internal/pagination"
)

// fundService handles the fund registry and daily NAV updates.
type fundService struct {
	db    *gorm.DB
	cache CacheInvalidator
}

// NewFundService creates a new FundServicer.
func NewFundService(db *gorm.DB, cache CacheInvalidator) FundServicer {
	return &fundService{db: db, cache: cache}
}

// CreateFund registers a new fund scheme with its launch NAV.
func (s *fundService) CreateFund(schemeCode, name string, category models.FundCategory, fundHouse string, nav, minimumInvestment, sipMinimum float64) (*models.Fund, error) {
	if nav <= 0 {
		return nil, apperrors.ErrInvalidNAV
	}

	var existing models.Fund
	if err := s.db.Where("scheme_code = ?", schemeCode).First(&existing).Error; err == nil {
		return nil, apperrors.ErrDuplicateSchemeCode
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := time.Now()
	fund := &models.Fund{
		SchemeCode:        schemeCode,
		Name:              name,
		Category:          category,
		FundHouse:         fundHouse,
		NAV:               round4(nav),
		PreviousNAV:       round4(nav),
		NAVDate:           now,
		MinimumInvestment: minimumInvestment,
		SIPMinimum:        sipMinimum,
		IsActive:          true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Create(fund).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		history := &models.NAVHistory{
			FundID:     fund.ID,
			NAV:        fund.NAV,
			NAVDate:    now,
			RecordedAt: now,
		}
		if txErr := tx.Create(history).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return fund, nil
}

// GetFundByID returns a fund by ID.
func (s *fundService) GetFundByID(fundID uint) (*models.Fund, error) {
	var fund models.Fund
	if err := s.db.First(&fund, fundID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFundNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &fund, nil
}

// ListFunds returns a paginated list of funds, optionally filtered by category.
func (s *fundService) ListFunds(page pagination.PageRequest, category *models.FundCategory) (*pagination.PageResponse[models.Fund], error) {
	page.Defaults()

	base := s.db.Model(&models.Fund{})
	if category != nil {
		base = base.Where("category = ?", *category)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var funds []models.Fund
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&funds).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(funds, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// ApplyNAV records a fund's new daily NAV and cascades the revaluation to
// every active holding of the fund. The whole cascade runs inside one
// database transaction using the same oldNAV/newNAV pair for the entire
// batch, so a partially updated fund row is never re-read mid-batch.
// Cache invalidation fires after commit and is not part of the
// consistency contract.
func (s *fundService) ApplyNAV(fundID uint, nav float64, navDate time.Time) (*NAVUpdateResult, error) {
	if nav <= 0 {
		return nil, apperrors.ErrInvalidNAV
	}

	var result NAVUpdateResult
	var affectedUsers []uint

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var fund models.Fund
		if txErr := tx.First(&fund, fundID).Error; txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return apperrors.ErrFundNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		oldNAV := fund.NAV
		newNAV := round4(nav)
		navChange := newNAV - oldNAV

		fund.PreviousNAV = oldNAV
		fund.NAV = newNAV
		fund.NAVDate = navDate
		fund.NAVChange = round4(navChange)
		if oldNAV > 0 {
			fund.NAVChangePct = round4(navChange / oldNAV * 100)
		} else {
			fund.NAVChangePct = 0
		}

		if txErr := tx.Save(&fund).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		history := &models.NAVHistory{
			FundID:     fund.ID,
			NAV:        newNAV,
			NAVDate:    navDate,
			RecordedAt: time.Now(),
		}
		if txErr := tx.Create(history).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		var holdings []models.PortfolioHolding
		if txErr := tx.Where("fund_id = ? AND is_active = ?", fundID, true).Find(&holdings).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		for i := range holdings {
			revalueHolding(&holdings[i], oldNAV, newNAV)
			if txErr := tx.Save(&holdings[i]).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
			affectedUsers = append(affectedUsers, holdings[i].UserID)
		}

		result = NAVUpdateResult{Fund: &fund, HoldingsUpdated: len(holdings)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAfterNAVUpdate(fundID, affectedUsers)
	return &result, nil
}

// ApplyNAVBatch applies the single-fund cascade per entry, isolating
// per-item failures so a malformed entry for one fund never blocks the rest.
func (s *fundService) ApplyNAVBatch(items []NAVUpdate) *NAVBatchResult {
	result := &NAVBatchResult{
		Updated: []NAVUpdateResult{},
		Failed:  []NAVBatchFailure{},
	}

	for _, item := range items {
		updated, err := s.ApplyNAV(item.FundID, item.NAV, item.NAVDate)
		if err != nil {
			result.Failed = append(result.Failed, NAVBatchFailure{FundID: item.FundID, Reason: err.Error()})
			continue
		}
		result.Updated = append(result.Updated, *updated)
	}

	return result
}

// invalidateAfterNAVUpdate clears cached fund and portfolio reads.
// Fire-and-forget: a stale entry self-heals on the next read-miss.
func (s *fundService) invalidateAfterNAVUpdate(fundID uint, userIDs []uint) {
	if s.cache == nil {
		return
	}

	s.cache.ClearPattern(fmt.Sprintf("funds:%d:*", fundID))

	seen := make(map[uint]bool, len(userIDs))
	for _, userID := range userIDs {
		if seen[userID] {
			continue
		}
		seen[userID] = true
		s.cache.ClearPattern(fmt.Sprintf("portfolio:%d:*", userID))
	}

	logger.Get().Debugw("cache invalidated after NAV update",
		"fund_id", fundID,
		"users", len(seen),
	)
}
