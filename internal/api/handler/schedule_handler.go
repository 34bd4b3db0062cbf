package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"robolab-portal/internal/dto"
	"robolab-portal/internal/service"
	"robolab-portal/pkg/response"
)

// ScheduleHandler student assignment HTTP handlers
type ScheduleHandler struct {
	svc service.ScheduleService
}

func NewScheduleHandler(svc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

// Assign POST /api/v1/schedules
func (h *ScheduleHandler) Assign(c *gin.Context) {
	var req dto.AssignStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.svc.Assign(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.Created(c, resp)
}

// List GET /api/v1/schedules
func (h *ScheduleHandler) List(c *gin.Context) {
	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, err := h.svc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// Remove DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) Remove(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, response.CodeNotFound, "assignment not found")
	case errors.Is(err, service.ErrRegistrationNotFound):
		response.NotFound(c, response.CodeNotFound, "registration not found")
	case errors.Is(err, service.ErrTimeSlotNotFound):
		response.NotFound(c, response.CodeNotFound, "time slot not found")
	case errors.Is(err, service.ErrDayNotInSlot):
		response.FieldErrors(c, map[string]string{"dayOfWeek": "the time slot does not run on that day"})
	case errors.Is(err, service.ErrDuplicateAssignment):
		response.Conflict(c, response.CodeConflict, "student is already assigned to this slot on that day")
	case errors.Is(err, service.ErrSlotFull):
		response.Conflict(c, response.CodeConflict, "time slot is full")
	default:
		if !storeError(c, err) {
			response.InternalError(c)
		}
	}
}
