package model

import "time"

// ProgramType is the cohort a registration belongs to. It is derived from the
// submission time at query time and never stored.
type ProgramType string

const (
	ProgramEarly ProgramType = "early"
	ProgramLater ProgramType = "later"
)

// Registration is one child's enrollment submission (table registrations).
type Registration struct {
	ID                    string    `gorm:"column:id;type:varchar(32);primaryKey"            json:"id"`
	ParentName            string    `gorm:"column:parent_name;type:varchar(100);not null"    json:"parentName"`
	ParentEmail           string    `gorm:"column:parent_email;type:varchar(255);not null;index" json:"parentEmail"`
	ParentPhone           string    `gorm:"column:parent_phone;type:varchar(30);not null"    json:"parentPhone"`
	EmergencyContactName  string    `gorm:"column:emergency_contact_name;type:varchar(100);not null"  json:"emergencyContactName"`
	EmergencyContactPhone string    `gorm:"column:emergency_contact_phone;type:varchar(30);not null"  json:"emergencyContactPhone"`
	ChildName             string    `gorm:"column:child_name;type:varchar(100);not null"     json:"childName"`
	ChildAge              string    `gorm:"column:child_age;type:varchar(3);not null"        json:"childAge"`
	ChildGrade            string    `gorm:"column:child_grade;type:varchar(30);not null"     json:"childGrade"`
	ChildSchool           string    `gorm:"column:child_school;type:varchar(150);not null"   json:"childSchool"`
	MedicalNotes          string    `gorm:"column:medical_notes;type:text"                   json:"medicalNotes,omitempty"`
	PreferredTiming       string    `gorm:"column:preferred_timing;type:varchar(100);not null" json:"preferredTiming"`
	AlternateTiming       string    `gorm:"column:alternate_timing;type:varchar(100)"        json:"alternateTiming,omitempty"`
	HasExperience         bool      `gorm:"column:has_experience;not null;default:false"     json:"hasExperience"`
	ExperienceDescription string    `gorm:"column:experience_description;type:text"          json:"experienceDescription,omitempty"`
	InterestLevel         string    `gorm:"column:interest_level;type:varchar(30);not null"  json:"interestLevel"`
	HearAboutUs           string    `gorm:"column:hear_about_us;type:varchar(100);not null"  json:"hearAboutUs"`
	PhotoConsent          bool      `gorm:"column:photo_consent;not null;default:false"      json:"photoConsent"`
	WaiverAgreement       bool      `gorm:"column:waiver_agreement;not null"                 json:"waiverAgreement"`
	TShirtSize            string    `gorm:"column:tshirt_size;type:varchar(10)"              json:"tshirtSize,omitempty"`
	SpecialRequests       string    `gorm:"column:special_requests;type:text"                json:"specialRequests,omitempty"`
	VolunteerInterest     bool      `gorm:"column:volunteer_interest;not null;default:false" json:"volunteerInterest"`
	SubmittedAt           time.Time `gorm:"column:submitted_at;not null;index"               json:"submittedAt"`
	CreatedAt             time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (Registration) TableName() string { return "registrations" }

// MirrorKey keys the record in the local mirror.
func (r Registration) MirrorKey() string { return r.ID }

// Cohort classifies the registration against cutoff: strictly before is
// early, on or after is later.
func (r *Registration) Cohort(cutoff time.Time) ProgramType {
	if r.SubmittedAt.Before(cutoff) {
		return ProgramEarly
	}
	return ProgramLater
}
