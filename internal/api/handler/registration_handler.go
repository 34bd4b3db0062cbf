package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"robolab-portal/internal/dto"
	"robolab-portal/internal/service"
	"robolab-portal/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RegistrationHandler registration HTTP handlers
type RegistrationHandler struct {
	svc service.RegistrationService
}

func NewRegistrationHandler(svc service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// Submit accepts the public registration form.
// POST /api/v1/registrations
func (h *RegistrationHandler) Submit(c *gin.Context) {
	var req dto.CreateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.svc.Submit(c.Request.Context(), &req)
	if err != nil {
		h.handleRegistrationError(c, err)
		return
	}

	c.Set("registration_id", resp.ID)
	c.Set("registration_source", resp.Source)
	response.Created(c, resp)
}

// List GET /api/v1/registrations
func (h *RegistrationHandler) List(c *gin.Context) {
	var req dto.RegistrationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.svc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleRegistrationError(c, err)
		return
	}

	response.OK(c, resp)
}

// Get GET /api/v1/registrations/:id
func (h *RegistrationHandler) Get(c *gin.Context) {
	c.Set("registration_id", c.Param("id"))
	resp, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleRegistrationError(c, err)
		return
	}
	response.OK(c, resp)
}

// Delete removes a registration; the service re-checks the admin role.
// DELETE /api/v1/registrations/:id
func (h *RegistrationHandler) Delete(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	c.Set("registration_id", c.Param("id"))
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleRegistrationError(c, err)
		return
	}
	response.OK(c, nil)
}

// Stats GET /api/v1/registrations/stats
func (h *RegistrationHandler) Stats(c *gin.Context) {
	resp, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.handleRegistrationError(c, err)
		return
	}
	response.OK(c, resp)
}

// Export GET /api/v1/registrations/export
func (h *RegistrationHandler) Export(c *gin.Context) {
	var req dto.RegistrationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	buf, filename, err := h.svc.Export(c.Request.Context(), &req)
	if err != nil {
		h.handleRegistrationError(c, err)
		return
	}
	response.Attachment(c, filename, xlsxContentType, buf.Bytes())
}

// Sync pushes locally stored registrations to the database.
// POST /api/v1/registrations/sync
func (h *RegistrationHandler) Sync(c *gin.Context) {
	resp, err := h.svc.Sync(c.Request.Context())
	if err != nil {
		h.handleRegistrationError(c, err)
		return
	}
	response.OK(c, resp)
}

func (h *RegistrationHandler) handleRegistrationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRegistrationNotFound):
		response.NotFound(c, response.CodeNotFound, "registration not found")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, response.CodeForbidden, "administrator role required")
	case errors.Is(err, service.ErrExportFailed):
		response.InternalError(c)
	default:
		if !storeError(c, err) {
			response.InternalError(c)
		}
	}
}
