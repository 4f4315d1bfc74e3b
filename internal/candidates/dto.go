package candidates

import (
	"time"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/documents"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/server/respond"
)

const dateLayout = "2006-01-02"

type CandidateResponse struct {
	ID          string                       `json:"id"`
	FirstName   string                       `json:"firstName"`
	LastName    string                       `json:"lastName"`
	Email       string                       `json:"email"`
	Phone       string                       `json:"phone"`
	Address     *string                      `json:"address"`
	LinkedIn    *string                      `json:"linkedIn"`
	Portfolio   *string                      `json:"portfolio"`
	Educations  []EducationResponse          `json:"educations"`
	Experiences []ExperienceResponse         `json:"experiences"`
	Documents   []documents.DocumentResponse `json:"documents"`
	CreatedAt   time.Time                    `json:"createdAt"`
	UpdatedAt   time.Time                    `json:"updatedAt"`
}

type EducationResponse struct {
	ID           string  `json:"id"`
	Institution  string  `json:"institution"`
	Degree       string  `json:"degree"`
	FieldOfStudy string  `json:"fieldOfStudy"`
	StartDate    string  `json:"startDate"`
	EndDate      *string `json:"endDate"`
	Current      bool    `json:"current"`
	Description  *string `json:"description"`
}

type ExperienceResponse struct {
	ID          string  `json:"id"`
	Company     string  `json:"company"`
	Position    string  `json:"position"`
	Description *string `json:"description"`
	StartDate   string  `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Current     bool    `json:"current"`
}

// CandidateSummary is a listing row.
type CandidateSummary struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

type ListResponse struct {
	Candidates []CandidateSummary `json:"candidates"`
	Pagination Pagination         `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ToResponse maps a candidate to its API shape. Nested lists are never null.
func ToResponse(c Candidate) CandidateResponse {
	resp := CandidateResponse{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     optional(c.Address),
		LinkedIn:    optional(c.LinkedIn),
		Portfolio:   optional(c.Portfolio),
		Educations:  make([]EducationResponse, 0, len(c.Educations)),
		Experiences: make([]ExperienceResponse, 0, len(c.Experiences)),
		Documents:   make([]documents.DocumentResponse, 0, len(c.Documents)),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	for _, e := range c.Educations {
		resp.Educations = append(resp.Educations, EducationResponse{
			ID:           e.ID,
			Institution:  e.Institution,
			Degree:       e.Degree,
			FieldOfStudy: e.FieldOfStudy,
			StartDate:    e.StartDate.Format(dateLayout),
			EndDate:      formatDate(e.EndDate),
			Current:      e.Current,
			Description:  optional(e.Description),
		})
	}
	for _, e := range c.Experiences {
		resp.Experiences = append(resp.Experiences, ExperienceResponse{
			ID:          e.ID,
			Company:     e.Company,
			Position:    e.Position,
			Description: optional(e.Description),
			StartDate:   e.StartDate.Format(dateLayout),
			EndDate:     formatDate(e.EndDate),
			Current:     e.Current,
		})
	}
	for _, d := range c.Documents {
		resp.Documents = append(resp.Documents, documents.ToResponse(d))
	}
	return resp
}

func toListResponse(p Page) ListResponse {
	out := ListResponse{
		Candidates: make([]CandidateSummary, 0, len(p.Candidates)),
		Pagination: Pagination{Page: p.Page, Limit: p.Limit, Total: p.Total, TotalPages: p.TotalPages},
	}
	for _, c := range p.Candidates {
		out.Candidates = append(out.Candidates, CandidateSummary{
			ID:        c.ID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Phone:     c.Phone,
			CreatedAt: c.CreatedAt,
		})
	}
	return out
}

func toFieldErrors(errs []ValidationError) []respond.FieldError {
	out := make([]respond.FieldError, 0, len(errs))
	for _, e := range errs {
		out = append(out, respond.FieldError{Field: e.Field, Message: e.Message})
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
