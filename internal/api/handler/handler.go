package handler

import "robolab-portal/internal/service"

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth         *AuthHandler
	Registration *RegistrationHandler
	TimeSlot     *TimeSlotHandler
	Schedule     *ScheduleHandler
	Payment      *PaymentHandler
	System       *SystemHandler
}

// NewHandler creates the Handler aggregate.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Registration: NewRegistrationHandler(svc.Registration),
		TimeSlot:     NewTimeSlotHandler(svc.TimeSlot),
		Schedule:     NewScheduleHandler(svc.Schedule),
		Payment:      NewPaymentHandler(svc.Payment),
		System:       NewSystemHandler(svc.System),
	}
}
