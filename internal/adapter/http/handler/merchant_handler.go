package handler

import (
	"merchant-payment-service/internal/adapter/http/dto"
	"merchant-payment-service/internal/core/ports"
	"merchant-payment-service/pkg/apperror"
	"merchant-payment-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MerchantHandler handles merchant management endpoints.
type MerchantHandler struct {
	merchantSvc ports.MerchantService
}

// NewMerchantHandler creates a new merchant handler.
func NewMerchantHandler(merchantSvc ports.MerchantService) *MerchantHandler {
	return &MerchantHandler{merchantSvc: merchantSvc}
}

// GetAll handles GET /api/v1/merchants.
func (h *MerchantHandler) GetAll(c *gin.Context) {
	merchants, err := h.merchantSvc.GetAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]dto.MerchantResponse, 0, len(merchants))
	for i := range merchants {
		resp = append(resp, dto.FromMerchant(&merchants[i]))
	}
	response.OK(c, resp)
}

// GetByID handles GET /api/v1/merchants/:id.
func (h *MerchantHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a valid UUID"))
		return
	}

	merchant, err := h.merchantSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromMerchant(merchant))
}

// Create handles POST /api/v1/merchants.
func (h *MerchantHandler) Create(c *gin.Context) {
	var req dto.CreateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	merchant, err := h.merchantSvc.Create(c.Request.Context(), ports.CreateMerchantRequest{
		BusinessName: req.BusinessName,
		Email:        req.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromMerchant(merchant))
}

// Update handles PUT /api/v1/merchants/:id.
func (h *MerchantHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a valid UUID"))
		return
	}

	var req dto.UpdateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	merchant, err := h.merchantSvc.Update(c.Request.Context(), id, ports.UpdateMerchantRequest{
		BusinessName: req.BusinessName,
		Email:        req.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromMerchant(merchant))
}

// UpdateStatus handles PATCH /api/v1/merchants/:id/status.
func (h *MerchantHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a valid UUID"))
		return
	}

	var req dto.UpdateMerchantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	merchant, err := h.merchantSvc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromMerchant(merchant))
}

// Delete handles DELETE /api/v1/merchants/:id.
func (h *MerchantHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a valid UUID"))
		return
	}

	if err := h.merchantSvc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
