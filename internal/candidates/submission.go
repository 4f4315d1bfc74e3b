package candidates

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/validators"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/uploads"
)

// PayloadField is the multipart form field holding the candidate JSON.
const PayloadField = "candidate"

// Submission is the raw candidate payload as the client sent it.
type Submission struct {
	FirstName   string            `json:"firstName" validate:"required,personname"`
	LastName    string            `json:"lastName" validate:"required,personname"`
	Email       string            `json:"email" validate:"required,max=255,emailaddr"`
	Phone       string            `json:"phone" validate:"required,max=32,phone"`
	Address     string            `json:"address" validate:"max=200"`
	LinkedIn    string            `json:"linkedIn" validate:"omitempty,max=255,absurl"`
	Portfolio   string            `json:"portfolio" validate:"omitempty,max=255,absurl"`
	Educations  []EducationEntry  `json:"educations" validate:"-"`
	Experiences []ExperienceEntry `json:"experiences" validate:"-"`
}

type EducationEntry struct {
	Institution  string  `json:"institution" validate:"required,max=100"`
	Degree       string  `json:"degree" validate:"required,max=100"`
	FieldOfStudy string  `json:"fieldOfStudy" validate:"required,max=100"`
	StartDate    string  `json:"startDate" validate:"required,calendardate"`
	EndDate      *string `json:"endDate"`
	Current      bool    `json:"current"`
	Description  string  `json:"description" validate:"max=1000"`
}

type ExperienceEntry struct {
	Company     string  `json:"company" validate:"required,max=100"`
	Position    string  `json:"position" validate:"required,max=100"`
	Description string  `json:"description" validate:"max=1000"`
	StartDate   string  `json:"startDate" validate:"required,calendardate"`
	EndDate     *string `json:"endDate"`
	Current     bool    `json:"current"`
}

// FileInfo is what the rule engine needs to know about an uploaded file.
type FileInfo struct {
	Name     string
	MimeType string
	Size     int64
}

// FilesFromStaged describes staged uploads for validation.
func FilesFromStaged(staged *uploads.StagedSet) []FileInfo {
	if staged == nil {
		return nil
	}
	out := make([]FileInfo, 0, len(staged.Files))
	for _, f := range staged.Files {
		out = append(out, FileInfo{Name: f.OriginalName, MimeType: f.MimeType, Size: f.Size})
	}
	return out
}

// submissionEnvelope defers the entry lists so each element is decoded on its
// own and its errors carry the element path.
type submissionEnvelope struct {
	Submission
	Educations  []json.RawMessage `json:"educations"`
	Experiences []json.RawMessage `json:"experiences"`
}

// ParseSubmission decodes a candidate payload. Malformed input is reported as
// validation errors so clients get the same error shape for every bad request.
func ParseSubmission(data []byte) (Submission, []ValidationError) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Submission{}, []ValidationError{{Field: PayloadField, Message: PayloadField + " is required"}}
	}

	var env submissionEnvelope
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&env); err != nil {
		return Submission{}, []ValidationError{decodeError(err, "")}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Submission{}, []ValidationError{{Field: PayloadField, Message: PayloadField + " must contain a single JSON object"}}
	}

	sub := env.Submission
	var errs []ValidationError
	sub.Educations, errs = decodeEntries[EducationEntry](env.Educations, "educations", errs)
	sub.Experiences, errs = decodeEntries[ExperienceEntry](env.Experiences, "experiences", errs)
	if len(errs) > 0 {
		return Submission{}, errs
	}
	return sub, nil
}

func decodeEntries[T any](raw []json.RawMessage, list string, errs []ValidationError) ([]T, []ValidationError) {
	if raw == nil {
		return nil, errs
	}
	out := make([]T, len(raw))
	for i, r := range raw {
		dec := json.NewDecoder(bytes.NewReader(r))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&out[i]); err != nil {
			errs = append(errs, decodeError(err, fmt.Sprintf("%s[%d]", list, i)))
		}
	}
	return out, errs
}

// decodeError names the offending field, qualified by path when the error
// comes from a list element.
func decodeError(err error, path string) ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := joinPath(path, typeErr.Field)
		return ValidationError{Field: field, Message: field + " has the wrong type"}
	}
	if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		name = joinPath(path, strings.Trim(name, `"`))
		return ValidationError{Field: name, Message: name + " is not a recognized field"}
	}
	return ValidationError{Field: PayloadField, Message: PayloadField + " must be valid JSON"}
}

func joinPath(path, field string) string {
	switch {
	case path == "" && field == "":
		return PayloadField
	case path == "":
		return field
	case field == "":
		return path
	}
	return path + "." + field
}

// toCandidate builds the record persisted for a validated submission.
func (s Submission) toCandidate(id string, now time.Time, newID func() string) Candidate {
	c := Candidate{
		ID:        id,
		FirstName: strings.TrimSpace(s.FirstName),
		LastName:  strings.TrimSpace(s.LastName),
		Email:     validators.NormalizeEmail(s.Email),
		Phone:     strings.TrimSpace(s.Phone),
		Address:   strings.TrimSpace(s.Address),
		LinkedIn:  strings.TrimSpace(s.LinkedIn),
		Portfolio: strings.TrimSpace(s.Portfolio),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, e := range s.Educations {
		start, end := entryDates(e.StartDate, e.EndDate, e.Current)
		c.Educations = append(c.Educations, Education{
			ID:           newID(),
			CandidateID:  id,
			Institution:  strings.TrimSpace(e.Institution),
			Degree:       strings.TrimSpace(e.Degree),
			FieldOfStudy: strings.TrimSpace(e.FieldOfStudy),
			StartDate:    start,
			EndDate:      end,
			Current:      e.Current,
			Description:  strings.TrimSpace(e.Description),
		})
	}
	for _, e := range s.Experiences {
		start, end := entryDates(e.StartDate, e.EndDate, e.Current)
		c.Experiences = append(c.Experiences, Experience{
			ID:          newID(),
			CandidateID: id,
			Company:     strings.TrimSpace(e.Company),
			Position:    strings.TrimSpace(e.Position),
			Description: strings.TrimSpace(e.Description),
			StartDate:   start,
			EndDate:     end,
			Current:     e.Current,
		})
	}
	return c
}

// entryDates drops the end date of ongoing entries.
func entryDates(start string, end *string, current bool) (time.Time, *time.Time) {
	s, _ := validators.ParseDate(start)
	if current || end == nil {
		return s, nil
	}
	e, ok := validators.ParseDate(*end)
	if !ok {
		return s, nil
	}
	return s, &e
}
