package model

// FieldMapping pairs an API field name with its storage column.
type FieldMapping struct {
	Field  string // camelCase, as used by the API and the mirror
	Column string // snake_case, as stored
	Label  string // human-readable header
}

// RegistrationFields is the single translation table between the API's
// naming and the registrations table, in display order.
var RegistrationFields = []FieldMapping{
	{"id", "id", "Registration ID"},
	{"parentName", "parent_name", "Parent Name"},
	{"parentEmail", "parent_email", "Parent Email"},
	{"parentPhone", "parent_phone", "Parent Phone"},
	{"emergencyContactName", "emergency_contact_name", "Emergency Contact"},
	{"emergencyContactPhone", "emergency_contact_phone", "Emergency Phone"},
	{"childName", "child_name", "Child Name"},
	{"childAge", "child_age", "Child Age"},
	{"childGrade", "child_grade", "Grade"},
	{"childSchool", "child_school", "School"},
	{"medicalNotes", "medical_notes", "Medical Notes"},
	{"preferredTiming", "preferred_timing", "Preferred Timing"},
	{"alternateTiming", "alternate_timing", "Alternate Timing"},
	{"hasExperience", "has_experience", "Has Experience"},
	{"experienceDescription", "experience_description", "Experience"},
	{"interestLevel", "interest_level", "Interest Level"},
	{"hearAboutUs", "hear_about_us", "Heard About Us"},
	{"photoConsent", "photo_consent", "Photo Consent"},
	{"waiverAgreement", "waiver_agreement", "Waiver Signed"},
	{"tshirtSize", "tshirt_size", "T-Shirt Size"},
	{"specialRequests", "special_requests", "Special Requests"},
	{"volunteerInterest", "volunteer_interest", "Volunteer Interest"},
	{"submittedAt", "submitted_at", "Submitted At"},
}

var (
	fieldToColumn = make(map[string]string, len(RegistrationFields))
	columnToField = make(map[string]string, len(RegistrationFields))
)

func init() {
	for _, m := range RegistrationFields {
		fieldToColumn[m.Field] = m.Column
		columnToField[m.Column] = m.Field
	}
}

// ColumnFor translates an API field name to its column.
func ColumnFor(field string) (string, bool) {
	c, ok := fieldToColumn[field]
	return c, ok
}

// FieldFor translates a column to its API field name.
func FieldFor(column string) (string, bool) {
	f, ok := columnToField[column]
	return f, ok
}

// Columns translates a set of API field names, skipping unknown ones.
func Columns(fields ...string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if c, ok := ColumnFor(f); ok {
			out = append(out, c)
		}
	}
	return out
}

// ColumnValues renders r keyed by column, booleans as Yes/No and the
// submission time in UTC minutes.
func (r *Registration) ColumnValues() map[string]string {
	return map[string]string{
		"id":                      r.ID,
		"parent_name":             r.ParentName,
		"parent_email":            r.ParentEmail,
		"parent_phone":            r.ParentPhone,
		"emergency_contact_name":  r.EmergencyContactName,
		"emergency_contact_phone": r.EmergencyContactPhone,
		"child_name":              r.ChildName,
		"child_age":               r.ChildAge,
		"child_grade":             r.ChildGrade,
		"child_school":            r.ChildSchool,
		"medical_notes":           r.MedicalNotes,
		"preferred_timing":        r.PreferredTiming,
		"alternate_timing":        r.AlternateTiming,
		"has_experience":          yesNo(r.HasExperience),
		"experience_description":  r.ExperienceDescription,
		"interest_level":          r.InterestLevel,
		"hear_about_us":           r.HearAboutUs,
		"photo_consent":           yesNo(r.PhotoConsent),
		"waiver_agreement":        yesNo(r.WaiverAgreement),
		"tshirt_size":             r.TShirtSize,
		"special_requests":        r.SpecialRequests,
		"volunteer_interest":      yesNo(r.VolunteerInterest),
		"submitted_at":            r.SubmittedAt.UTC().Format("2006-01-02 15:04"),
	}
}

// MappedColumns lists every column of RegistrationFields. The schema check
// requires all of them.
func (Registration) MappedColumns() []string {
	fields := make([]string, 0, len(RegistrationFields))
	for _, m := range RegistrationFields {
		fields = append(fields, m.Field)
	}
	return Columns(fields...)
}

// FieldForColumn names a column the way the API does.
func (Registration) FieldForColumn(column string) (string, bool) {
	return FieldFor(column)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
