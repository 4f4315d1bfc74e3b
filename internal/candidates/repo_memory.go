package candidates

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo stores candidates in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]Candidate
	byEmail map[string]string
	order   []string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]Candidate),
		byEmail: make(map[string]string),
	}
}

// Create stores the candidate unless its email is already registered.
func (r *MemoryRepo) Create(ctx context.Context, candidate Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := strings.ToLower(candidate.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[key]; taken {
		return ErrEmailConflict
	}
	r.byID[candidate.ID] = candidate
	r.byEmail[key] = candidate.ID
	r.order = append(r.order, candidate.ID)
	return nil
}

// FindByEmail returns the candidate registered with email, ignoring case.
func (r *MemoryRepo) FindByEmail(ctx context.Context, email string) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return Candidate{}, ErrNotFound
	}
	return r.byID[id], nil
}

// GetByID returns a candidate by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, candidateID string) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[candidateID]
	if !ok {
		return Candidate{}, ErrNotFound
	}
	return c, nil
}

// List returns candidates newest first.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Candidate, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Candidate, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		c := r.byID[r.order[i]]
		c.Educations, c.Experiences, c.Documents = nil, nil, nil
		all = append(all, c)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []Candidate{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// SearchDistinct scans stored entries for values containing query. For values
// that differ only by case the lexicographically smallest spelling is kept.
func (r *MemoryRepo) SearchDistinct(ctx context.Context, field SuggestField, query string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	r.mu.RLock()
	seen := make(map[string]string)
	for _, c := range r.byID {
		for _, v := range fieldValues(c, field) {
			folded := strings.ToLower(v)
			if !strings.Contains(folded, needle) {
				continue
			}
			if prev, ok := seen[folded]; !ok || v < prev {
				seen[folded] = v
			}
		}
	}
	r.mu.RUnlock()

	out := make([]string, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	sortFolded(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a candidate and everything attached to it.
func (r *MemoryRepo) Delete(ctx context.Context, candidateID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[candidateID]
	if !ok {
		return ErrNotFound
	}
	delete(r.byID, candidateID)
	delete(r.byEmail, strings.ToLower(c.Email))
	for i, id := range r.order {
		if id == candidateID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func fieldValues(c Candidate, field SuggestField) []string {
	var out []string
	switch field {
	case FieldInstitution:
		for _, e := range c.Educations {
			out = append(out, e.Institution)
		}
	case FieldCompany:
		for _, e := range c.Experiences {
			out = append(out, e.Company)
		}
	}
	return out
}

// sortFolded orders values case-insensitively, breaking ties bytewise.
func sortFolded(values []string) {
	sort.Slice(values, func(i, j int) bool {
		a, b := strings.ToLower(values[i]), strings.ToLower(values[j])
		if a != b {
			return a < b
		}
		return values[i] < values[j]
	})
}
