package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Resource Lookup (RES) ----

func ErrNotFound(entity string) *AppError {
	return New("RES_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Payment Business Logic (PAY) ----

func ErrInvalidAmount() *AppError {
	return New("PAY_001", "Amount must be positive", http.StatusBadRequest)
}

func ErrAmountLimitExceeded(limit string) *AppError {
	return New("PAY_002", fmt.Sprintf("Amount exceeds the maximum of %s", limit), http.StatusBadRequest)
}

func ErrMerchantNotActive(status string) *AppError {
	return New("PAY_003", fmt.Sprintf("Merchant is not active. Current status: %s", status), http.StatusUnprocessableEntity)
}

func ErrTransactionNotPending(status string) *AppError {
	return New("PAY_004", fmt.Sprintf("Transaction is not pending. Current status: %s", status), http.StatusConflict)
}

func ErrInvalidStatus(label string) *AppError {
	return New("PAY_005", fmt.Sprintf("Invalid status value: %s", label), http.StatusBadRequest)
}

func ErrIdempotencyConflict(err error) *AppError {
	return Wrap("PAY_006", "Concurrent request with the same idempotency key", http.StatusConflict, err)
}

// ---- Merchant Management (MER) ----

func ErrEmailInUse(email string) *AppError {
	return New("MER_001", fmt.Sprintf("Email %s is already in use", email), http.StatusConflict)
}

// ---- Rate Limiting (RATE) ----

func ErrVelocityLimitExceeded() *AppError {
	return New("RATE_001", "Transaction rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}

func ErrRateLimitExceeded() *AppError {
	return New("RATE_002", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid username or password", http.StatusUnauthorized)
}

func ErrUsernameExists(username string) *AppError {
	return New("AUTH_002", fmt.Sprintf("Username '%s' is already taken", username), http.StatusConflict)
}

func ErrEmailRegistered(email string) *AppError {
	return New("AUTH_003", fmt.Sprintf("Email '%s' is already registered", email), http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_004", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrUserDisabled() *AppError {
	return New("AUTH_005", "User account is disabled", http.StatusUnauthorized)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
