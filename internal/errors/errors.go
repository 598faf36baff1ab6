// Package errors provides custom error types for the Nivesh API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrKYCNotVerified     = &AppError{Code: "KYC_NOT_VERIFIED", Message: "KYC verification is required before investing", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Fund errors.
var (
	ErrFundNotFound        = &AppError{Code: "FUND_NOT_FOUND", Message: "Fund not found", StatusCode: http.StatusNotFound}
	ErrFundInactive        = &AppError{Code: "FUND_INACTIVE", Message: "Fund is not open for transactions", StatusCode: http.StatusBadRequest}
	ErrInvalidNAV          = &AppError{Code: "INVALID_NAV", Message: "NAV must be greater than zero", StatusCode: http.StatusBadRequest}
	ErrDuplicateSchemeCode = &AppError{Code: "DUPLICATE_SCHEME_CODE", Message: "A fund with this scheme code already exists", StatusCode: http.StatusConflict}
)

// Holding errors.
var (
	ErrHoldingNotFound   = &AppError{Code: "HOLDING_NOT_FOUND", Message: "No active holding for this fund", StatusCode: http.StatusNotFound}
	ErrInsufficientUnits = &AppError{Code: "INSUFFICIENT_UNITS", Message: "Insufficient units for this redemption", StatusCode: http.StatusConflict}
	ErrConcurrentUpdate  = &AppError{Code: "CONCURRENT_UPDATE", Message: "The holding was modified by another request, please retry", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound       = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrBelowMinimumInvestment    = &AppError{Code: "BELOW_MINIMUM_INVESTMENT", Message: "Amount is below the fund's minimum investment", StatusCode: http.StatusBadRequest}
	ErrBelowMinimumRedemption    = &AppError{Code: "BELOW_MINIMUM_REDEMPTION", Message: "Redemption must be at least 0.001 units", StatusCode: http.StatusBadRequest}
	ErrTransactionNotCancellable = &AppError{Code: "TRANSACTION_NOT_CANCELLABLE", Message: "Only pending or processing transactions can be cancelled", StatusCode: http.StatusConflict}
	ErrTransactionFinalized      = &AppError{Code: "TRANSACTION_FINALIZED", Message: "Transaction is already in a terminal state", StatusCode: http.StatusConflict}
	ErrPaymentGateway            = &AppError{Code: "PAYMENT_GATEWAY_ERROR", Message: "Payment gateway is unavailable", StatusCode: http.StatusBadGateway}
)

// SIP errors.
var (
	ErrSIPNotFound       = &AppError{Code: "SIP_NOT_FOUND", Message: "SIP not found", StatusCode: http.StatusNotFound}
	ErrBelowSIPMinimum   = &AppError{Code: "BELOW_SIP_MINIMUM", Message: "Amount is below the fund's SIP minimum", StatusCode: http.StatusBadRequest}
	ErrSIPNotActive      = &AppError{Code: "SIP_NOT_ACTIVE", Message: "SIP is not active", StatusCode: http.StatusConflict}
	ErrSIPNotPaused      = &AppError{Code: "SIP_NOT_PAUSED", Message: "SIP is not paused", StatusCode: http.StatusConflict}
	ErrSIPTerminal       = &AppError{Code: "SIP_TERMINAL", Message: "SIP is already in a terminal state", StatusCode: http.StatusConflict}
	ErrInvalidDayOfMonth = &AppError{Code: "INVALID_DAY_OF_MONTH", Message: "Day of month must be between 1 and 28", StatusCode: http.StatusBadRequest}
)
