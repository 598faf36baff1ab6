package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "nivesh/internal/errors"
	"nivesh/internal/logger"
	"nivesh/internal/models"
	"nivesh/internal/pagination"
)

// settlementDays is the T+3 settlement convention for redemptions.
const settlementDays = 3

// transactionService drives purchases and redemptions through the charge
// pipeline and status state machine.
type transactionService struct {
	db        *gorm.DB
	portfolio PortfolioServicer
	gateway   PaymentGateway
	notifier  NotificationService
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, portfolio PortfolioServicer, gateway PaymentGateway, notifier NotificationService) TransactionServicer {
	return &transactionService{db: db, portfolio: portfolio, gateway: gateway, notifier: notifier}
}

// Purchase validates a purchase request, computes charges, persists the
// transaction as PENDING, and initiates the payment. A gateway failure or
// timeout leaves the transaction PENDING with a failed payment status for
// reconciliation; it never fails the request.
func (s *transactionService) Purchase(ctx context.Context, input PurchaseInput) (*models.Transaction, error) {
	var fund models.Fund
	if err := s.db.First(&fund, input.FundID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFundNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !fund.IsActive {
		return nil, apperrors.ErrFundInactive
	}

	var user models.User
	if err := s.db.First(&user, input.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if user.KYCStatus != models.KYCStatusVerified {
		return nil, apperrors.ErrKYCNotVerified
	}

	txnType := input.Type
	if txnType == "" {
		txnType = models.TransactionTypePurchase
	}

	// Resolve amount/units from whichever was supplied.
	var amount, units float64
	switch {
	case input.Units > 0:
		units = round6(input.Units)
		amount = round2(units * fund.NAV)
	case input.Amount > 0:
		amount = round2(input.Amount)
		units = round6(amount / fund.NAV)
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Either amount or units must be provided")
	}

	// SIP installments honor the SIP minimum; lump-sum purchases the
	// fund's minimum investment.
	if txnType == models.TransactionTypeSIP {
		if amount < fund.SIPMinimum {
			return nil, apperrors.ErrBelowSIPMinimum
		}
	} else if amount < fund.MinimumInvestment {
		return nil, apperrors.ErrBelowMinimumInvestment
	}

	charges := computePurchaseCharges(amount)
	netAmount := round2(amount - charges.Total)

	txn := &models.Transaction{
		UserID:          input.UserID,
		FundID:          input.FundID,
		SIPID:           input.SIPID,
		Type:            txnType,
		Units:           units,
		NAV:             fund.NAV,
		TotalAmount:     amount,
		Charges:         charges,
		NetAmount:       netAmount,
		Status:          models.TransactionStatusPending,
		PaymentMethod:   input.PaymentMethod,
		TransactionDate: time.Now(),
	}
	if err := s.db.Create(txn).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	payment, err := s.gateway.Initiate(ctx, amount, input.PaymentMethod, user.Email)
	if err != nil {
		// Degraded state, not a request failure: the transaction stays
		// PENDING for external reconciliation.
		logger.Get().Errorw("payment initiation failed",
			"transaction_id", txn.ID,
			"user_id", input.UserID,
			"error", err,
		)
		txn.PaymentStatus = "INITIATION_FAILED"
		if saveErr := s.db.Save(txn).Error; saveErr != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, saveErr)
		}
		return txn, nil
	}

	txn.PaymentID = payment.PaymentID
	txn.PaymentStatus = payment.Status
	txn.Status = models.TransactionStatusProcessing
	if err := s.db.Save(txn).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.Send("purchase_initiated", map[string]any{
		"user_id":        input.UserID,
		"fund":           fund.Name,
		"amount":         amount,
		"units":          units,
		"transaction_id": txn.ID,
	})

	return txn, nil
}

// ConfirmPayment is the external payment confirmation hook. A confirmed
// purchase credits units to the holding exactly once and completes the
// transaction; a failed payment marks it FAILED (and fails the owning SIP).
// Confirming an already COMPLETED transaction is a no-op. Both terminal
// writes are a compare-and-swap on status, like Cancel: a transaction a
// concurrent request cancelled or failed stays that way, and its units are
// never credited.
func (s *transactionService) ConfirmPayment(transactionID uint, paymentStatus string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.First(&txn, transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	switch txn.Status {
	case models.TransactionStatusCompleted:
		return &txn, nil
	case models.TransactionStatusFailed, models.TransactionStatusCancelled:
		return nil, apperrors.ErrTransactionFinalized
	}

	confirmable := []models.TransactionStatus{models.TransactionStatusPending, models.TransactionStatusProcessing}

	if paymentStatus == "FAILED" {
		cas := s.db.Model(&models.Transaction{}).
			Where("id = ? AND status IN ?", transactionID, confirmable).
			Updates(map[string]interface{}{
				"status":         models.TransactionStatusFailed,
				"payment_status": paymentStatus,
			})
		if cas.Error != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, cas.Error)
		}
		if cas.RowsAffected == 0 {
			return nil, apperrors.ErrTransactionFinalized
		}
		txn.Status = models.TransactionStatusFailed
		txn.PaymentStatus = paymentStatus
		if txn.SIPID != nil {
			s.failSIP(*txn.SIPID, "installment payment failed")
		}
		s.notifier.Send("payment_failed", map[string]any{
			"user_id":        txn.UserID,
			"transaction_id": txn.ID,
		})
		return &txn, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		isPurchase := txn.Type == models.TransactionTypePurchase || txn.Type == models.TransactionTypeSIP

		cas := tx.Model(&models.Transaction{}).
			Where("id = ? AND status IN ?", transactionID, confirmable).
			Updates(map[string]interface{}{
				"status":          models.TransactionStatusCompleted,
				"payment_status":  paymentStatus,
				"settlement_date": now,
				"units_credited":  isPurchase,
			})
		if cas.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, cas.Error)
		}
		if cas.RowsAffected == 0 {
			return apperrors.ErrTransactionFinalized
		}

		if isPurchase {
			if _, txErr := s.portfolio.AddPurchase(tx, txn.UserID, txn.FundID, txn.Units, txn.NAV, txn.TransactionDate); txErr != nil {
				return txErr
			}
		}

		if txn.Type == models.TransactionTypeSIP && txn.SIPID != nil {
			if txErr := recordSIPInstallment(tx, *txn.SIPID, txn.TotalAmount, txn.Units, txn.TransactionDate); txErr != nil {
				return txErr
			}
		}

		txn.Status = models.TransactionStatusCompleted
		txn.PaymentStatus = paymentStatus
		txn.SettlementDate = &now
		txn.UnitsCredited = isPurchase
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Send("transaction_completed", map[string]any{
		"user_id":        txn.UserID,
		"transaction_id": txn.ID,
		"type":           string(txn.Type),
	})

	return &txn, nil
}

// Redeem validates a redemption, applies the exit load and STT, debits the
// holding, and persists the transaction as PENDING with a T+3 settlement
// date. The payout itself settles externally. The holding is read on the
// write transaction so validation, the charge computation, and the debit
// all see one consistent row; the guarded write in ApplyRedemption rejects
// anything that mutates the row between the read and the update.
func (s *transactionService) Redeem(ctx context.Context, input RedemptionInput) (*models.Transaction, error) {
	var fund models.Fund
	if err := s.db.First(&fund, input.FundID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFundNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var txn *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var holding models.PortfolioHolding
		if txErr := tx.Where("user_id = ? AND fund_id = ? AND is_active = ?", input.UserID, input.FundID, true).
			First(&holding).Error; txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return apperrors.ErrHoldingNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		// Resolve units from whichever of units/amount was supplied.
		units := input.Units
		if input.RedemptionType == models.RedemptionTypeFull {
			units = holding.UnitsHeld
		} else if units <= 0 && input.Amount > 0 {
			units = round6(input.Amount / fund.NAV)
		}
		units = round6(units)

		if units < unitsTolerance {
			return apperrors.ErrBelowMinimumRedemption
		}
		if units > holding.UnitsHeld+unitsTolerance {
			return apperrors.ErrInsufficientUnits
		}

		amount := round2(units * fund.NAV)

		exitLoad := 0.0
		if holding.FirstPurchaseDate != nil {
			holdingPeriodDays := int(time.Since(*holding.FirstPurchaseDate).Hours() / 24)
			if holdingPeriodDays < fund.ExitLoadPeriodDays {
				exitLoad = fund.ExitLoadRate
			}
		}

		charges, netAmount := computeRedemptionCharges(amount, exitLoad)

		if _, txErr := s.portfolio.ApplyRedemption(tx, &holding, units, fund.NAV, input.RedemptionType); txErr != nil {
			return txErr
		}

		settlement := time.Now().AddDate(0, 0, settlementDays)
		txn = &models.Transaction{
			UserID:          input.UserID,
			FundID:          input.FundID,
			Type:            models.TransactionTypeRedemption,
			Units:           units,
			NAV:             fund.NAV,
			TotalAmount:     amount,
			Charges:         charges,
			NetAmount:       netAmount,
			ExitLoadRate:    exitLoad,
			Status:          models.TransactionStatusPending,
			TransactionDate: time.Now(),
			SettlementDate:  &settlement,
		}
		if txErr := tx.Create(txn).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Send("redemption_initiated", map[string]any{
		"user_id":        input.UserID,
		"fund":           fund.Name,
		"units":          txn.Units,
		"net_amount":     txn.NetAmount,
		"transaction_id": txn.ID,
	})

	return txn, nil
}

// Cancel moves a PENDING or PROCESSING transaction to CANCELLED via a
// compare-and-swap on status, so concurrent cancellations collapse to one.
// For purchases whose units were already credited, the compensating
// reversal runs exactly once, guarded by ReversedAt.
func (s *transactionService) Cancel(userID, transactionID uint, reason string) (*models.Transaction, error) {
	var txn models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		cas := tx.Model(&models.Transaction{}).
			Where("id = ? AND user_id = ? AND status IN ?", transactionID, userID,
				[]models.TransactionStatus{models.TransactionStatusPending, models.TransactionStatusProcessing}).
			Updates(map[string]interface{}{
				"status":              models.TransactionStatusCancelled,
				"cancellation_reason": reason,
			})
		if cas.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, cas.Error)
		}
		if cas.RowsAffected == 0 {
			if txErr := tx.Where("id = ? AND user_id = ?", transactionID, userID).First(&txn).Error; txErr != nil {
				if errors.Is(txErr, gorm.ErrRecordNotFound) {
					return apperrors.ErrTransactionNotFound
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
			return apperrors.ErrTransactionNotCancellable
		}

		if txErr := tx.First(&txn, transactionID).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		isPurchase := txn.Type == models.TransactionTypePurchase || txn.Type == models.TransactionTypeSIP
		if isPurchase && txn.UnitsCredited && txn.ReversedAt == nil {
			if txErr := s.portfolio.ReversePurchase(tx, txn.UserID, txn.FundID, txn.Units); txErr != nil {
				return txErr
			}
			now := time.Now()
			txn.ReversedAt = &now
			if txErr := tx.Save(&txn).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Send("transaction_cancelled", map[string]any{
		"user_id":        txn.UserID,
		"transaction_id": txn.ID,
		"reason":         reason,
	})

	return &txn, nil
}

// GetTransactionByID returns a transaction owned by the user.
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.Preload("Fund").Where("id = ? AND user_id = ?", transactionID, userID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &txn, nil
}

// GetUserTransactions returns a paginated, filtered transaction history.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.FundID != nil {
		base = base.Where("fund_id = ?", *filter.FundID)
	}
	if filter.FromDate != nil {
		base = base.Where("transaction_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("transaction_date <= ?", *filter.ToDate)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Order("transaction_date DESC").Scopes(pagination.Paginate(page)).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// failSIP marks a SIP FAILED after an installment payment failure.
// Terminal; errors are logged, never propagated.
func (s *transactionService) failSIP(sipID uint, reason string) {
	err := s.db.Model(&models.SIP{}).Where("id = ?", sipID).Updates(map[string]interface{}{
		"status":         models.SIPStatusFailed,
		"failure_reason": reason,
	}).Error
	if err != nil {
		logger.Get().Errorw("failed to mark SIP as failed", "sip_id", sipID, "error", err)
	}
}
