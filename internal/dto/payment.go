package dto

// ── Payment DTOs ──

// CreatePaymentRequest opens an unpaid record for one month.
type CreatePaymentRequest struct {
	RegistrationID string   `json:"registrationId" binding:"required,max=32"`
	MonthYear      string   `json:"monthYear"      binding:"required,month_year"`
	Amount         *float64 `json:"amount"         binding:"omitempty,gt=0,lt=100000000"`
	Notes          string   `json:"notes"          binding:"max=500"`
}

// UpdatePaymentStatusRequest toggles paid status.
type UpdatePaymentStatusRequest struct {
	IsPaid        *bool   `json:"isPaid"        binding:"required"`
	PaymentMethod string  `json:"paymentMethod" binding:"omitempty,oneof=cash card check transfer other"`
	Notes         *string `json:"notes"        binding:"omitempty,max=500"`
}

// PaymentListRequest filters payment records.
type PaymentListRequest struct {
	MonthYear      string `form:"month_year"      binding:"omitempty,month_year"`
	RegistrationID string `form:"registration_id" binding:"omitempty,max=32"`
	IsPaid         *bool  `form:"is_paid"`
}

// PaymentSummaryRequest selects the summarized month.
type PaymentSummaryRequest struct {
	MonthYear string `form:"month_year" binding:"omitempty,month_year"`
}

// PaymentResponse is one payment record.
type PaymentResponse struct {
	ID             string  `json:"id"`
	RegistrationID string  `json:"registrationId"`
	StudentName    string  `json:"studentName"`
	MonthYear      string  `json:"monthYear"`
	Amount         float64 `json:"amount"`
	IsPaid         bool    `json:"isPaid"`
	PaymentDate    string  `json:"paymentDate,omitempty"` // YYYY-MM-DD
	PaymentMethod  string  `json:"paymentMethod,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

// PaymentSummaryResponse totals one month, or every month when MonthYear is empty.
type PaymentSummaryResponse struct {
	MonthYear   string  `json:"monthYear,omitempty"`
	Records     int     `json:"records"`
	PaidCount   int     `json:"paidCount"`
	UnpaidCount int     `json:"unpaidCount"`
	PaidTotal   float64 `json:"paidTotal"`
	UnpaidTotal float64 `json:"unpaidTotal"`
	Currency    string  `json:"currency"`
}

// GeneratePaymentsResponse reports a bulk generation run.
type GeneratePaymentsResponse struct {
	Registrations int      `json:"registrations"`
	Months        []string `json:"months"`
	Created       int64    `json:"created"`
}
