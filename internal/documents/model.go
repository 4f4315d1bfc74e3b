package documents

import "time"

// Document is the persisted metadata of one resume file.
type Document struct {
	ID               string
	CandidateID      string
	OriginalName     string
	FileName         string
	MimeType         string
	DetectedMimeType string
	SizeBytes        int64
	PageCount        int
	StorageProvider  string
	StorageKey       string
	UploadedAt       time.Time
}
