package candidates

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/metrics"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/telemetry"
)

const (
	// MinQueryLen is the shortest query that triggers a lookup.
	MinQueryLen = 2
	// MaxSuggestions caps every suggestion list.
	MaxSuggestions = 10
)

// Suggester is the store capability autocomplete needs.
type Suggester interface {
	SearchDistinct(ctx context.Context, field SuggestField, query string, limit int) ([]string, error)
}

// Autocomplete suggests previously entered institutions and companies.
type Autocomplete struct {
	Store Suggester
}

// NewAutocomplete constructs an Autocomplete.
func NewAutocomplete(store Suggester) *Autocomplete {
	return &Autocomplete{Store: store}
}

// QueryTooShort reports whether query is below the lookup threshold.
func QueryTooShort(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) < MinQueryLen
}

// Suggest returns at most MaxSuggestions distinct values of field containing
// query, ignoring case, in case-insensitive order. It never fails: short
// queries and store errors both yield an empty list.
func (a *Autocomplete) Suggest(ctx context.Context, field SuggestField, query string) []string {
	query = strings.TrimSpace(query)
	if QueryTooShort(query) || !field.Valid() {
		return []string{}
	}
	values, err := a.Store.SearchDistinct(ctx, field, query, MaxSuggestions)
	if err != nil {
		metrics.IncAutocompleteDegraded()
		telemetry.Warn("autocomplete.degraded", map[string]any{"field": string(field), "err": err})
		return []string{}
	}
	return distinctFolded(values, MaxSuggestions)
}

// distinctFolded drops values equal ignoring case, keeping the smallest
// spelling, then sorts and truncates.
func distinctFolded(values []string, limit int) []string {
	keep := make(map[string]string, len(values))
	for _, v := range values {
		folded := strings.ToLower(v)
		if prev, ok := keep[folded]; !ok || v < prev {
			keep[folded] = v
		}
	}
	out := make([]string, 0, len(keep))
	for _, v := range keep {
		out = append(out, v)
	}
	sortFolded(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
