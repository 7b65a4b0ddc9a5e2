package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := RegisterRequest{
		Username: "  alice  ",
		Email:    " alice@example.com ",
		Password: "  pass1234  ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "alice@example.com", req.Email)
	assert.Equal(t, "pass1234", req.Password)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	req := CreateMerchantRequest{
		BusinessName: "shop <script>alert('x')</script>",
		Email:        "shop@example.com",
	}
	SanitizeStruct(&req)

	assert.Contains(t, req.BusinessName, "&lt;script&gt;")
	assert.NotContains(t, req.BusinessName, "<script>")
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	msg := "  approved by issuer  "
	req := CallbackRequest{
		TransactionID: "5f0c31e5-9e3a-4a4f-8e54-000000000000",
		Status:        "SUCCESS",
		Message:       &msg,
	}
	SanitizeStruct(&req)

	assert.Equal(t, "approved by issuer", *req.Message)
}

func TestSanitizeStruct_NilPointerIsNoOp(t *testing.T) {
	req := CallbackRequest{
		TransactionID: "5f0c31e5-9e3a-4a4f-8e54-000000000000",
		Status:        "FAILED",
	}
	SanitizeStruct(&req)
	assert.Nil(t, req.Message)
	assert.Nil(t, req.ExternalReferenceID)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom Validator tests ---

func TestSafeID_Valid(t *testing.T) {
	cases := []string{
		"order-001",
		"ORDER_002",
		"a.b.c",
		"simple123",
		"ABC-def_GHI.123",
	}
	for _, tc := range cases {
		assert.True(t, safeStringRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestSafeID_Invalid(t *testing.T) {
	cases := []string{
		"order 001",   // space
		"order<001>",  // angle brackets
		"order;DROP",  // semicolon
		"",            // empty
		"hello world", // space
		"order\n001",  // newline
	}
	for _, tc := range cases {
		assert.False(t, safeStringRe.MatchString(tc), "expected invalid: %s", tc)
	}
}

func TestCurrencyCode_Valid(t *testing.T) {
	for _, tc := range []string{"USD", "EUR", "VND", "GBP"} {
		assert.True(t, currencyCodeRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestCurrencyCode_Invalid(t *testing.T) {
	for _, tc := range []string{"usd", "US", "USDT", "U1D", "", "us d"} {
		assert.False(t, currencyCodeRe.MatchString(tc), "expected invalid: %s", tc)
	}
}
