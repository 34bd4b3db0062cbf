package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"robolab-portal/internal/dto"
	"robolab-portal/internal/service"
	"robolab-portal/pkg/response"
)

// PaymentHandler tuition HTTP handlers
type PaymentHandler struct {
	svc service.PaymentService
}

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// Create POST /api/v1/payments
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}
	response.Created(c, resp)
}

// List GET /api/v1/payments
func (h *PaymentHandler) List(c *gin.Context) {
	var req dto.PaymentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, err := h.svc.List(c.Request.Context(), &req)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// UpdateStatus PUT /api/v1/payments/:id/status
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}
	response.OK(c, resp)
}

// Delete DELETE /api/v1/payments/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handlePaymentError(c, err)
		return
	}
	response.OK(c, nil)
}

// Summary GET /api/v1/payments/summary
func (h *PaymentHandler) Summary(c *gin.Context) {
	var req dto.PaymentSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.svc.Summary(c.Request.Context(), &req)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}
	response.OK(c, resp)
}

// Generate POST /api/v1/payments/generate
func (h *PaymentHandler) Generate(c *gin.Context) {
	resp, err := h.svc.Generate(c.Request.Context())
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}
	response.OK(c, resp)
}

// Receipt downloads the printable receipt.
// GET /api/v1/payments/:id/receipt
func (h *PaymentHandler) Receipt(c *gin.Context) {
	body, filename, err := h.svc.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}
	response.Attachment(c, filename, "text/html; charset=utf-8", body)
}

func (h *PaymentHandler) handlePaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPaymentNotFound):
		response.NotFound(c, response.CodeNotFound, "payment record not found")
	case errors.Is(err, service.ErrRegistrationNotFound):
		response.NotFound(c, response.CodeNotFound, "registration not found")
	case errors.Is(err, service.ErrDuplicatePayment):
		response.Conflict(c, response.CodeConflict, "a payment record for this month already exists")
	case errors.Is(err, service.ErrReceiptFailed):
		response.InternalError(c)
	default:
		if !storeError(c, err) {
			response.InternalError(c)
		}
	}
}
