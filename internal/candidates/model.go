package candidates

import (
	"time"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/documents"
)

// Candidate is a persisted applicant with its history and resume files.
type Candidate struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Address     string
	LinkedIn    string
	Portfolio   string
	Educations  []Education
	Experiences []Experience
	Documents   []documents.Document
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Education is one persisted education entry. EndDate is nil while Current.
type Education struct {
	ID           string
	CandidateID  string
	Institution  string
	Degree       string
	FieldOfStudy string
	StartDate    time.Time
	EndDate      *time.Time
	Current      bool
	Description  string
}

// Experience is one persisted work experience entry. EndDate is nil while Current.
type Experience struct {
	ID          string
	CandidateID string
	Company     string
	Position    string
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	Current     bool
}

// SuggestField names a text column autocomplete can search.
type SuggestField string

const (
	FieldInstitution SuggestField = "institution"
	FieldCompany     SuggestField = "company"
)

// Valid reports whether f is a searchable field.
func (f SuggestField) Valid() bool {
	return f == FieldInstitution || f == FieldCompany
}
