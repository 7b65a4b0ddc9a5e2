package handler

import (
	"merchant-payment-service/internal/adapter/http/dto"
	"merchant-payment-service/internal/core/ports"
	"merchant-payment-service/pkg/apperror"
	"merchant-payment-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment transaction endpoints.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// CreatePayment handles POST /api/v1/payments.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	merchantID, err := uuid.Parse(req.MerchantID)
	if err != nil {
		response.Error(c, apperror.Validation("merchant_id must be a valid UUID"))
		return
	}

	tx, err := h.paymentSvc.CreatePayment(c.Request.Context(), ports.CreatePaymentRequest{
		MerchantID:     merchantID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromTransaction(tx))
}

// ProcessCallback handles POST /api/v1/payments/callback — the gateway
// reports the terminal outcome of a pending transaction.
func (h *PaymentHandler) ProcessCallback(c *gin.Context) {
	var req dto.CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	transactionID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		response.Error(c, apperror.Validation("transaction_id must be a valid UUID"))
		return
	}

	tx, err := h.paymentSvc.ProcessCallback(c.Request.Context(), ports.CallbackRequest{
		TransactionID:       transactionID,
		Status:              req.Status,
		ExternalReferenceID: req.ExternalReferenceID,
		Message:             req.Message,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTransaction(tx))
}

// GetByID handles GET /api/v1/payments/:id — returns the transaction
// with its full audit trail.
func (h *PaymentHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a valid UUID"))
		return
	}

	tx, auditTrail, err := h.paymentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	detail := dto.TransactionDetailResponse{
		TransactionResponse: dto.FromTransaction(tx),
		AuditTrail:          make([]dto.AuditLogResponse, 0, len(auditTrail)),
	}
	for _, entry := range auditTrail {
		detail.AuditTrail = append(detail.AuditTrail, dto.FromAuditLog(entry))
	}

	response.OK(c, detail)
}

// GetByMerchantID handles GET /api/v1/payments/merchant/:merchantId.
func (h *PaymentHandler) GetByMerchantID(c *gin.Context) {
	merchantID, err := uuid.Parse(c.Param("merchantId"))
	if err != nil {
		response.Error(c, apperror.Validation("merchantId must be a valid UUID"))
		return
	}

	txs, err := h.paymentSvc.GetByMerchantID(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		resp = append(resp, dto.FromTransaction(&txs[i]))
	}

	response.OK(c, resp)
}
