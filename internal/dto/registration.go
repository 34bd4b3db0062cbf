package dto

// ── Registration DTOs ──

// CreateRegistrationRequest is the public registration form.
type CreateRegistrationRequest struct {
	ParentName            string `json:"parentName"            binding:"required,min=2,max=100"`
	ParentEmail           string `json:"parentEmail"           binding:"required,email,max=255"`
	ParentPhone           string `json:"parentPhone"           binding:"required,min=10,max=30"`
	EmergencyContactName  string `json:"emergencyContactName"  binding:"required,min=2,max=100"`
	EmergencyContactPhone string `json:"emergencyContactPhone" binding:"required,min=10,max=30"`
	ChildName             string `json:"childName"             binding:"required,min=2,max=100"`
	ChildAge              string `json:"childAge"              binding:"required,child_age"`
	ChildGrade            string `json:"childGrade"            binding:"required,max=30"`
	ChildSchool           string `json:"childSchool"           binding:"required,min=2,max=150"`
	MedicalNotes          string `json:"medicalNotes"          binding:"max=2000"`
	PreferredTiming       string `json:"preferredTiming"       binding:"required,max=100"`
	AlternateTiming       string `json:"alternateTiming"       binding:"max=100"`
	HasExperience         bool   `json:"hasExperience"`
	ExperienceDescription string `json:"experienceDescription" binding:"max=2000"`
	InterestLevel         string `json:"interestLevel"         binding:"required,oneof=beginner intermediate advanced"`
	HearAboutUs           string `json:"hearAboutUs"           binding:"required,min=2,max=100"`
	PhotoConsent          bool   `json:"photoConsent"`
	WaiverAgreement       bool   `json:"waiverAgreement"       binding:"accepted"`
	TShirtSize            string `json:"tshirtSize"            binding:"omitempty,oneof=YXS YS YM YL AS AM AL AXL"`
	SpecialRequests       string `json:"specialRequests"       binding:"max=2000"`
	VolunteerInterest     bool   `json:"volunteerInterest"`
}

// RegistrationListRequest filters the admin registration list.
type RegistrationListRequest struct {
	Term        string `form:"term"         binding:"max=100"`
	Field       string `form:"field"        binding:"omitempty,oneof=all name email id"`
	ProgramType string `form:"program_type" binding:"omitempty,oneof=all early later"`
	PaginationRequest
}

// RegistrationResponse is a registration as returned to administrators.
type RegistrationResponse struct {
	ID                    string `json:"id"`
	ParentName            string `json:"parentName"`
	ParentEmail           string `json:"parentEmail"`
	ParentPhone           string `json:"parentPhone"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`
	ChildName             string `json:"childName"`
	ChildAge              string `json:"childAge"`
	ChildGrade            string `json:"childGrade"`
	ChildSchool           string `json:"childSchool"`
	MedicalNotes          string `json:"medicalNotes,omitempty"`
	PreferredTiming       string `json:"preferredTiming"`
	AlternateTiming       string `json:"alternateTiming,omitempty"`
	HasExperience         bool   `json:"hasExperience"`
	ExperienceDescription string `json:"experienceDescription,omitempty"`
	InterestLevel         string `json:"interestLevel"`
	HearAboutUs           string `json:"hearAboutUs"`
	PhotoConsent          bool   `json:"photoConsent"`
	WaiverAgreement       bool   `json:"waiverAgreement"`
	TShirtSize            string `json:"tshirtSize,omitempty"`
	SpecialRequests       string `json:"specialRequests,omitempty"`
	VolunteerInterest     bool   `json:"volunteerInterest"`
	SubmittedAt           string `json:"submittedAt"`
	ProgramType           string `json:"programType"`
	ProgramLabel          string `json:"programLabel"`
	Pending               bool   `json:"pending,omitempty"`
}

// CreateRegistrationResponse acknowledges a submission.
type CreateRegistrationResponse struct {
	ID          string   `json:"id"`
	SubmittedAt string   `json:"submittedAt"`
	Source      string   `json:"source"` // remote | local
	Message     string   `json:"message"`
	Warnings    []string `json:"warnings,omitempty"`
}

// RegistrationListResponse is one page of filtered registrations.
type RegistrationListResponse struct {
	List     []RegistrationResponse `json:"list"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
	Total    int                    `json:"total"`
	Pages    int                    `json:"total_pages"`
	Source   string                 `json:"source"`
}

// RegistrationStatsResponse summarizes the registration set.
type RegistrationStatsResponse struct {
	Total        int    `json:"total"`
	Early        int    `json:"early"`
	Later        int    `json:"later"`
	EarlyLabel   string `json:"earlyLabel"`
	LaterLabel   string `json:"laterLabel"`
	Cutoff       string `json:"cutoff"`
	PendingLocal int    `json:"pendingLocal"`
	Source       string `json:"source"`
}

// SyncResponse reports a manual retry of locally stored registrations.
type SyncResponse struct {
	Attempted int      `json:"attempted"`
	Synced    int      `json:"synced"`
	Remaining int      `json:"remaining"`
	Failed    []string `json:"failed,omitempty"`
}
