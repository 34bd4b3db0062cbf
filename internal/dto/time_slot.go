package dto

// ── Time slot DTOs ──

// CreateTimeSlotRequest creates a weekly session.
type CreateTimeSlotRequest struct {
	Name        string   `json:"name"        binding:"required,min=2,max=100"`
	StartTime   string   `json:"startTime"   binding:"required,clock"` // "15:30"
	EndTime     string   `json:"endTime"     binding:"required,clock"`
	Days        []string `json:"days"        binding:"required,min=1,max=7,unique,dive,weekday"`
	MaxCapacity int      `json:"maxCapacity" binding:"required,min=1,max=500"`
	Description string   `json:"description" binding:"max=1000"`
}

// UpdateTimeSlotRequest changes any subset of a slot.
type UpdateTimeSlotRequest struct {
	Name        *string  `json:"name"        binding:"omitempty,min=2,max=100"`
	StartTime   *string  `json:"startTime"   binding:"omitempty,clock"`
	EndTime     *string  `json:"endTime"     binding:"omitempty,clock"`
	Days        []string `json:"days"        binding:"omitempty,min=1,max=7,unique,dive,weekday"`
	MaxCapacity *int     `json:"maxCapacity" binding:"omitempty,min=1,max=500"`
	Description *string  `json:"description" binding:"omitempty,max=1000"`
}

// TimeSlotListRequest filters the slot list.
type TimeSlotListRequest struct {
	Day string `form:"day" binding:"omitempty,weekday"`
}

// TimeSlotResponse carries live capacity figures.
type TimeSlotResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	Days        []string `json:"days"`
	MaxCapacity int      `json:"maxCapacity"`
	Description string   `json:"description,omitempty"`
	Assigned    int      `json:"assigned"`
	Available   int      `json:"available"`
	Selectable  bool     `json:"selectable"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}
