// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("fund_category", validateFundCategory)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("redemption_type", validateRedemptionType)
		_ = v.RegisterValidation("sip_frequency", validateSIPFrequency)
		_ = v.RegisterValidation("kyc_status", validateKYCStatus)
		_ = v.RegisterValidation("payment_method", validatePaymentMethod)
		_ = v.RegisterValidation("performance_period", validatePerformancePeriod)
	}
}

func validateFundCategory(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "equity", "debt", "hybrid", "index", "liquid":
		return true
	}
	return false
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "PURCHASE", "REDEMPTION", "SWITCH", "DIVIDEND", "SIP":
		return true
	}
	return false
}

func validateRedemptionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "PARTIAL", "FULL":
		return true
	}
	return false
}

func validateSIPFrequency(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "DAILY", "WEEKLY", "MONTHLY", "QUARTERLY":
		return true
	}
	return false
}

func validateKYCStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "PENDING", "VERIFIED", "REJECTED":
		return true
	}
	return false
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "UPI", "NETBANKING", "CARD", "AUTO_DEBIT":
		return true
	}
	return false
}

func validatePerformancePeriod(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "1m", "3m", "6m", "1y", "3y", "5y", "all":
		return true
	}
	return false
}
