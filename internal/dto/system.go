package dto

// HealthResponse reports dependency status.
type HealthResponse struct {
	Status       string `json:"status"` // ok | degraded
	Database     string `json:"database"`
	Redis        string `json:"redis"`
	PendingLocal int    `json:"pendingLocal"`
}
