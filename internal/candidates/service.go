package candidates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/documents"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/metrics"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/telemetry"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/validators"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/uploads"
)

// State tracks a submission through the create flow.
type State string

const (
	StateReceived   State = "RECEIVED"
	StateValidated  State = "VALIDATED"
	StatePersisting State = "PERSISTING"
	StateCommitted  State = "COMMITTED"
	StateRejected   State = "REJECTED"
	StateRolledBack State = "ROLLED_BACK"
)

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateRejected || s == StateRolledBack
}

// Result is the outcome of one create attempt.
type Result struct {
	State     State
	Candidate Candidate
}

// Service coordinates validation, persistence and file promotion.
type Service struct {
	Repo  Repo
	Docs  *documents.Service
	Now   func() time.Time
	NewID func() string
}

// NewService constructs a Service.
func NewService(repo Repo, docs *documents.Service) *Service {
	return &Service{
		Repo:  repo,
		Docs:  docs,
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// Create registers a candidate. Either the candidate row, its nested records
// and every document are all stored, or nothing is: rows are committed first
// and deleted again if a document cannot be promoted. Staged files are removed
// on every path.
//
// Errors: *ValidationFailedError, ErrEmailConflict, or an error wrapping
// ErrStorage.
func (s *Service) Create(ctx context.Context, sub Submission, staged *uploads.StagedSet) (Result, error) {
	started := time.Now()
	res := Result{State: StateReceived}
	defer func() {
		metrics.AddStagedFilesCleanedUp(staged.Cleanup())
		metrics.ObserveCreateDurationMs(float64(time.Since(started).Milliseconds()))
	}()

	if errs := Validate(sub, FilesFromStaged(staged)); len(errs) > 0 {
		res.State = StateRejected
		metrics.IncCandidateRejected()
		return res, &ValidationFailedError{Errors: errs}
	}
	res.State = StateValidated

	existing, err := s.Repo.FindByEmail(ctx, validators.NormalizeEmail(sub.Email))
	switch {
	case err == nil:
		telemetry.Info("candidate.conflict", map[string]any{"existingCandidateId": existing.ID})
		res.State = StateRejected
		metrics.IncCandidateConflict()
		return res, ErrEmailConflict
	case !errors.Is(err, ErrNotFound):
		res.State = StateRejected
		return res, fmt.Errorf("%w: lookup email: %w", ErrStorage, err)
	}

	res.State = StatePersisting
	var files []uploads.StagedFile
	if staged != nil {
		files = staged.Files
	}
	now := s.now()
	candidate := sub.toCandidate(s.newID(), now, s.newID)
	candidate.Documents = s.Docs.Plan(candidate.ID, files)

	if err := s.Repo.Create(ctx, candidate); err != nil {
		if errors.Is(err, ErrEmailConflict) {
			res.State = StateRejected
			metrics.IncCandidateConflict()
			return res, ErrEmailConflict
		}
		res.State = StateRolledBack
		metrics.IncCandidateRolledBack()
		return res, fmt.Errorf("%w: persist candidate: %w", ErrStorage, err)
	}

	if written, err := s.Docs.Promote(ctx, candidate.Documents, files); err != nil {
		s.undo(ctx, candidate.ID, written, err)
		res.State = StateRolledBack
		metrics.IncCandidateRolledBack()
		return res, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	res.State = StateCommitted
	res.Candidate = candidate
	metrics.IncCandidateCreated()
	telemetry.Info("candidate.created", map[string]any{
		"candidateId": candidate.ID,
		"educations":  len(candidate.Educations),
		"experiences": len(candidate.Experiences),
		"documents":   len(candidate.Documents),
	})
	return res, nil
}

// undo removes what a failed promotion left behind. It runs detached from the
// request context so a cancelled client cannot leave orphans.
func (s *Service) undo(ctx context.Context, candidateID string, written []string, cause error) {
	ctx = context.WithoutCancel(ctx)
	fields := map[string]any{"candidateId": candidateID, "err": cause}
	if err := s.Docs.Remove(ctx, written); err != nil {
		fields["removeErr"] = err
	}
	if err := s.Repo.Delete(ctx, candidateID); err != nil && !errors.Is(err, ErrNotFound) {
		fields["deleteErr"] = err
		telemetry.Error("candidate.rollback_incomplete", fields)
		return
	}
	telemetry.Warn("candidate.rolled_back", fields)
}

// Get returns a candidate with all nested records.
func (s *Service) Get(ctx context.Context, candidateID string) (Candidate, error) {
	if _, err := uuid.Parse(candidateID); err != nil {
		return Candidate{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, candidateID)
}

// Page is one page of the candidate listing.
type Page struct {
	Candidates []Candidate
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// List returns a page of candidates, newest first. page and limit are clamped
// into range.
func (s *Service) List(ctx context.Context, page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if maxPage := math.MaxInt/limit + 1; page > maxPage {
		page = maxPage
	}
	items, total, err := s.Repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Candidates: items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// OpenDocument streams one document of a candidate.
func (s *Service) OpenDocument(ctx context.Context, candidateID, documentID string) (documents.Document, io.ReadCloser, error) {
	c, err := s.Get(ctx, candidateID)
	if err != nil {
		return documents.Document{}, nil, err
	}
	for _, d := range c.Documents {
		if d.ID != documentID {
			continue
		}
		rc, err := s.Docs.Open(ctx, d)
		if err != nil {
			return documents.Document{}, nil, fmt.Errorf("%w: open document: %w", ErrStorage, err)
		}
		return d, rc, nil
	}
	return documents.Document{}, nil, documents.ErrNotFound
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID == nil {
		return uuid.NewString()
	}
	return s.NewID()
}
