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

// NextExecutionDate computes the next installment date after from.
// DAILY advances one day, WEEKLY seven. MONTHLY/QUARTERLY add whole
// calendar months and then pin dayOfMonth (when given), clamping to the
// month's last day so a schedule never rolls over into the following month.
func NextExecutionDate(from time.Time, frequency models.SIPFrequency, dayOfMonth int) time.Time {
	switch frequency {
	case models.SIPFrequencyDaily:
		return from.AddDate(0, 0, 1)
	case models.SIPFrequencyWeekly:
		return from.AddDate(0, 0, 7)
	}

	months := 1
	if frequency == models.SIPFrequencyQuarterly {
		months = 3
	}

	year, month := from.Year(), int(from.Month())+months
	year += (month - 1) / 12
	month = (month-1)%12 + 1

	day := from.Day()
	if dayOfMonth > 0 {
		day = dayOfMonth
	}
	if last := daysInMonth(year, time.Month(month)); day > last {
		day = last
	}

	return time.Date(year, time.Month(month), day,
		from.Hour(), from.Minute(), from.Second(), 0, from.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// recordSIPInstallment folds a completed installment into the SIP's running
// aggregates and advances the schedule. Runs on the caller's tx alongside
// the transaction completion. The schedule advances from the previously
// scheduled date, not the execution timestamp, so a late sweep does not
// drift the plan; when the sweep missed more than one period the advance
// repeats until the next date lands strictly after the execution, skipping
// the missed periods rather than replaying them.
func recordSIPInstallment(tx *gorm.DB, sipID uint, amount, units float64, executedAt time.Time) error {
	var sip models.SIP
	if err := tx.First(&sip, sipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrSIPNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	sip.CompletedInstallments++
	sip.TotalInvested = round2(sip.TotalInvested + amount)
	sip.TotalUnits = round6(sip.TotalUnits + units)
	if sip.TotalUnits > 0 {
		sip.AverageNAV = round4(sip.TotalInvested / sip.TotalUnits)
	}
	sip.LastExecutedDate = &executedAt
	next := NextExecutionDate(sip.NextExecutionDate, sip.Frequency, sip.DayOfMonth)
	for !next.After(executedAt) {
		next = NextExecutionDate(next, sip.Frequency, sip.DayOfMonth)
	}
	sip.NextExecutionDate = next

	if sip.Installments > 0 && sip.CompletedInstallments >= sip.Installments {
		sip.Status = models.SIPStatusCompleted
	} else if sip.EndDate != nil && sip.NextExecutionDate.After(*sip.EndDate) {
		sip.Status = models.SIPStatusCompleted
	}

	if err := tx.Save(&sip).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// sipService manages SIP schedules and state transitions.
type sipService struct {
	db           *gorm.DB
	transactions TransactionServicer
	notifier     NotificationService
}

// NewSIPService creates a new SIPServicer.
func NewSIPService(db *gorm.DB, transactions TransactionServicer, notifier NotificationService) SIPServicer {
	return &sipService{db: db, transactions: transactions, notifier: notifier}
}

// Register creates an ACTIVE SIP. The first next_execution_date is one
// period after startDate.
func (s *sipService) Register(userID, fundID uint, amount float64, frequency models.SIPFrequency, dayOfMonth int, startDate time.Time, installments int, endDate *time.Time) (*models.SIP, error) {
	var fund models.Fund
	if err := s.db.First(&fund, fundID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFundNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !fund.IsActive {
		return nil, apperrors.ErrFundInactive
	}
	if amount < fund.SIPMinimum {
		return nil, apperrors.ErrBelowSIPMinimum
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if user.KYCStatus != models.KYCStatusVerified {
		return nil, apperrors.ErrKYCNotVerified
	}

	switch frequency {
	case models.SIPFrequencyMonthly, models.SIPFrequencyQuarterly:
		if dayOfMonth < 1 || dayOfMonth > 28 {
			return nil, apperrors.ErrInvalidDayOfMonth
		}
	default:
		dayOfMonth = 0
	}

	sip := &models.SIP{
		UserID:            userID,
		FundID:            fundID,
		Amount:            amount,
		Frequency:         frequency,
		DayOfMonth:        dayOfMonth,
		StartDate:         startDate,
		EndDate:           endDate,
		Installments:      installments,
		Status:            models.SIPStatusActive,
		NextExecutionDate: NextExecutionDate(startDate, frequency, dayOfMonth),
	}
	if err := s.db.Create(sip).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.Send("sip_registered", map[string]any{
		"user_id": userID,
		"fund":    fund.Name,
		"amount":  amount,
		"sip_id":  sip.ID,
	})

	return sip, nil
}

// GetSIPByID returns a SIP owned by the user.
func (s *sipService) GetSIPByID(userID, sipID uint) (*models.SIP, error) {
	var sip models.SIP
	if err := s.db.Preload("Fund").Where("id = ? AND user_id = ?", sipID, userID).First(&sip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSIPNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &sip, nil
}

// GetUserSIPs returns a paginated list of the user's SIPs.
func (s *sipService) GetUserSIPs(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.SIP], error) {
	page.Defaults()

	base := s.db.Model(&models.SIP{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var sips []models.SIP
	if err := s.db.Preload("Fund").Where("user_id = ?", userID).
		Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&sips).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(sips, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// Pause suspends an ACTIVE SIP, leaving next_execution_date untouched.
func (s *sipService) Pause(userID, sipID uint, reason string) (*models.SIP, error) {
	sip, err := s.GetSIPByID(userID, sipID)
	if err != nil {
		return nil, err
	}
	if sip.Status != models.SIPStatusActive {
		return nil, apperrors.ErrSIPNotActive
	}

	sip.Status = models.SIPStatusPaused
	sip.PauseReason = reason
	if err := s.db.Save(sip).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sip, nil
}

// Resume reactivates a PAUSED SIP. The schedule restarts from today, not
// from the original plan.
func (s *sipService) Resume(userID, sipID uint) (*models.SIP, error) {
	sip, err := s.GetSIPByID(userID, sipID)
	if err != nil {
		return nil, err
	}
	if sip.Status != models.SIPStatusPaused {
		return nil, apperrors.ErrSIPNotPaused
	}

	sip.Status = models.SIPStatusActive
	sip.PauseReason = ""
	sip.NextExecutionDate = NextExecutionDate(time.Now(), sip.Frequency, sip.DayOfMonth)
	if err := s.db.Save(sip).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sip, nil
}

// Cancel stops a non-terminal SIP and freezes its aggregates.
func (s *sipService) Cancel(userID, sipID uint, reason string) (*models.SIP, error) {
	sip, err := s.GetSIPByID(userID, sipID)
	if err != nil {
		return nil, err
	}
	switch sip.Status {
	case models.SIPStatusCompleted, models.SIPStatusCancelled, models.SIPStatusFailed:
		return nil, apperrors.ErrSIPTerminal
	}

	sip.Status = models.SIPStatusCancelled
	sip.PauseReason = reason
	if err := s.db.Save(sip).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notifier.Send("sip_cancelled", map[string]any{
		"user_id": userID,
		"sip_id":  sipID,
		"reason":  reason,
	})

	return sip, nil
}

// ExecuteDue runs every ACTIVE SIP whose next_execution_date has passed,
// driven externally by the scheduler cron. Each installment is a SIP-typed
// purchase confirmed via auto-debit; per-SIP failures are isolated so one
// bad plan never blocks the sweep.
func (s *sipService) ExecuteDue(ctx context.Context, now time.Time) (*SIPExecutionResult, error) {
	var due []models.SIP
	if err := s.db.Where("status = ? AND next_execution_date <= ?", models.SIPStatusActive, now).Find(&due).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &SIPExecutionResult{Executed: []uint{}, Failed: []SIPBatchFailure{}}

	for i := range due {
		sip := &due[i]

		sipID := sip.ID
		txn, err := s.transactions.Purchase(ctx, PurchaseInput{
			UserID:        sip.UserID,
			FundID:        sip.FundID,
			Amount:        sip.Amount,
			PaymentMethod: "AUTO_DEBIT",
			Type:          models.TransactionTypeSIP,
			SIPID:         &sipID,
		})
		if err != nil {
			logger.Get().Errorw("SIP installment purchase failed", "sip_id", sip.ID, "error", err)
			result.Failed = append(result.Failed, SIPBatchFailure{SIPID: sip.ID, Reason: err.Error()})
			continue
		}

		if txn.PaymentStatus == "INITIATION_FAILED" {
			if _, err := s.transactions.ConfirmPayment(txn.ID, "FAILED"); err != nil {
				logger.Get().Errorw("failed to fail SIP installment", "sip_id", sip.ID, "error", err)
			}
			result.Failed = append(result.Failed, SIPBatchFailure{SIPID: sip.ID, Reason: "installment payment failed"})
			continue
		}

		if _, err := s.transactions.ConfirmPayment(txn.ID, "CONFIRMED"); err != nil {
			result.Failed = append(result.Failed, SIPBatchFailure{SIPID: sip.ID, Reason: err.Error()})
			continue
		}

		result.Executed = append(result.Executed, sip.ID)
	}

	return result, nil
}
