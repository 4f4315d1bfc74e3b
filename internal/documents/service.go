package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/storage/object"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/util"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/uploads"
)

const keyPrefix = "candidates"

// Service moves staged files into permanent storage.
type Service struct {
	Store object.ObjectStore
	Now   func() time.Time
}

// NewService constructs a Service.
func NewService(store object.ObjectStore) *Service {
	return &Service{Store: store, Now: time.Now}
}

// Plan assigns ids, stored names and storage keys for the staged files
// without touching permanent storage.
func (s *Service) Plan(candidateID string, staged []uploads.StagedFile) []Document {
	now := s.now()
	docs := make([]Document, 0, len(staged))
	for _, f := range staged {
		mimeType := uploads.ContentTypeFor(f.OriginalName)
		if mimeType == "" {
			mimeType = f.MimeType
		}
		stored := util.StoredFileName(f.OriginalName, now)
		docs = append(docs, Document{
			ID:               uuid.NewString(),
			CandidateID:      candidateID,
			OriginalName:     f.OriginalName,
			FileName:         stored,
			MimeType:         mimeType,
			DetectedMimeType: detectMime(f.Path),
			SizeBytes:        f.Size,
			PageCount:        pageCount(f.Path, mimeType),
			StorageProvider:  s.Store.Provider(),
			StorageKey:       path.Join(keyPrefix, candidateID, stored),
			UploadedAt:       now,
		})
	}
	return docs
}

// Promote copies staged[i] to docs[i].StorageKey. It stops at the first
// failure and returns the keys written so far so the caller can remove them.
func (s *Service) Promote(ctx context.Context, docs []Document, staged []uploads.StagedFile) ([]string, error) {
	if len(docs) != len(staged) {
		return nil, fmt.Errorf("%w: %d documents for %d staged files", ErrPromote, len(docs), len(staged))
	}
	written := make([]string, 0, len(docs))
	for i, doc := range docs {
		if err := s.putFile(ctx, doc, staged[i].Path); err != nil {
			// Put may have left a partial object behind.
			written = append(written, doc.StorageKey)
			return written, fmt.Errorf("%w %s: %w", ErrPromote, doc.OriginalName, err)
		}
		written = append(written, doc.StorageKey)
	}
	return written, nil
}

// Remove deletes the given keys, attempting all of them.
func (s *Service) Remove(ctx context.Context, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := s.Store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Open streams a stored document.
func (s *Service) Open(ctx context.Context, doc Document) (io.ReadCloser, error) {
	return s.Store.Open(ctx, doc.StorageKey)
}

func (s *Service) putFile(ctx context.Context, doc Document, stagedPath string) error {
	f, err := os.Open(stagedPath)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = s.Store.Put(ctx, doc.StorageKey, doc.MimeType, f)
	return err
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
