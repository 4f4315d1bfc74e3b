package candidates

import "context"

// Repo defines persistence operations for candidates.
type Repo interface {
	// Create stores the candidate with its educations, experiences and
	// document metadata atomically. It returns ErrEmailConflict when the
	// email is already taken.
	Create(ctx context.Context, candidate Candidate) error
	FindByEmail(ctx context.Context, email string) (Candidate, error)
	GetByID(ctx context.Context, candidateID string) (Candidate, error)
	// List returns one page of candidates, newest first, without nested
	// records, plus the total count.
	List(ctx context.Context, limit, offset int) ([]Candidate, int, error)
	// SearchDistinct returns distinct stored values of field containing
	// query, compared case-insensitively, sorted case-insensitively.
	SearchDistinct(ctx context.Context, field SuggestField, query string, limit int) ([]string, error)
	Delete(ctx context.Context, candidateID string) error
}
