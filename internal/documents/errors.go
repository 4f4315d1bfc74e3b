package documents

import "errors"

var (
	// ErrNotFound indicates the document does not exist for the candidate.
	ErrNotFound = errors.New("document not found")

	// ErrPromote wraps failures moving a staged file into permanent storage.
	ErrPromote = errors.New("promote document")
)
