package dto

// ── Assignment DTOs ──

// AssignStudentRequest places a registration in a slot on one weekday.
type AssignStudentRequest struct {
	RegistrationID string `json:"registrationId" binding:"required,max=32"`
	TimeSlotID     string `json:"timeSlotId"     binding:"required,uuid"`
	DayOfWeek      string `json:"dayOfWeek"      binding:"required,weekday"`
	Notes          string `json:"notes"          binding:"max=500"`
}

// ScheduleListRequest filters assignments.
type ScheduleListRequest struct {
	TimeSlotID     string `form:"time_slot_id"    binding:"omitempty,uuid"`
	RegistrationID string `form:"registration_id" binding:"omitempty,max=32"`
	DayOfWeek      string `form:"day_of_week"     binding:"omitempty,weekday"`
}

// ScheduleResponse is an assignment with display names.
type ScheduleResponse struct {
	ID             string `json:"id"`
	RegistrationID string `json:"registrationId"`
	ChildName      string `json:"childName"`
	ParentName     string `json:"parentName"`
	TimeSlotID     string `json:"timeSlotId"`
	TimeSlotName   string `json:"timeSlotName"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	DayOfWeek      string `json:"dayOfWeek"`
	Notes          string `json:"notes,omitempty"`
	AssignedAt     string `json:"assignedAt"`
}
