package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	FileName     string    `json:"fileName"`
	MimeType     string    `json:"mimeType"`
	SizeBytes    int64     `json:"sizeBytes"`
	PageCount    int       `json:"pageCount,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// ToResponse maps a document to its API shape. Storage keys stay internal.
func ToResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:           doc.ID,
		OriginalName: doc.OriginalName,
		FileName:     doc.FileName,
		MimeType:     doc.MimeType,
		SizeBytes:    doc.SizeBytes,
		PageCount:    doc.PageCount,
		UploadedAt:   doc.UploadedAt,
	}
}
