package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := New("PAY_001", "Amount must be positive", http.StatusBadRequest)
	assert.Equal(t, "[PAY_001] Amount must be positive", e.Error())
}

func TestAppError_ErrorWithWrapped(t *testing.T) {
	cause := errors.New("connection refused")
	e := Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, cause)
	assert.Equal(t, "[SYS_001] Internal database error: connection refused", e.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	e := ErrDatabaseError(fmt.Errorf("query failed: %w", cause))

	assert.True(t, errors.Is(e, cause))
}

func TestErrNotFound(t *testing.T) {
	e := ErrNotFound("Merchant")
	assert.Equal(t, "RES_001", e.Code)
	assert.Equal(t, http.StatusNotFound, e.HTTPStatus)
	assert.Contains(t, e.Message, "Merchant")
}

func TestErrMerchantNotActive_CarriesStatus(t *testing.T) {
	e := ErrMerchantNotActive("SUSPENDED")
	assert.Equal(t, "PAY_003", e.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, e.HTTPStatus)
	assert.Contains(t, e.Message, "SUSPENDED")
}

func TestErrTransactionNotPending_CarriesStatus(t *testing.T) {
	e := ErrTransactionNotPending("SUCCESS")
	assert.Equal(t, "PAY_004", e.Code)
	assert.Equal(t, http.StatusConflict, e.HTTPStatus)
	assert.Contains(t, e.Message, "SUCCESS")
}

func TestErrVelocityLimitExceeded(t *testing.T) {
	e := ErrVelocityLimitExceeded()
	assert.Equal(t, "RATE_001", e.Code)
	assert.Equal(t, http.StatusTooManyRequests, e.HTTPStatus)
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{ErrInvalidAmount(), http.StatusBadRequest},
		{ErrAmountLimitExceeded("1000000"), http.StatusBadRequest},
		{ErrInvalidStatus("Bogus"), http.StatusBadRequest},
		{ErrIdempotencyConflict(errors.New("race")), http.StatusConflict},
		{ErrEmailInUse("a@b.com"), http.StatusConflict},
		{ErrRateLimitExceeded(), http.StatusTooManyRequests},
		{ErrInvalidCredentials(), http.StatusUnauthorized},
		{ErrUsernameExists("bob"), http.StatusConflict},
		{ErrEmailRegistered("a@b.com"), http.StatusConflict},
		{ErrInvalidToken(), http.StatusUnauthorized},
		{ErrUserDisabled(), http.StatusUnauthorized},
		{InternalError(errors.New("boom")), http.StatusInternalServerError},
		{Validation("missing field"), http.StatusBadRequest},
	}
	for _, tc := range cases {
		require.NotEmpty(t, tc.err.Code)
		assert.Equal(t, tc.status, tc.err.HTTPStatus, tc.err.Code)
	}
}
