package uploads

import (
	"strings"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/util"
)

const (
	// MaxFiles is the most documents one submission may carry.
	MaxFiles = 3
	// MaxFileBytes is the per-file size limit (5MB).
	MaxFileBytes = 5 << 20
	// MaxRequestBytes caps the whole multipart body. It leaves room for oversized
	// files so they reach validation and get a field-level error.
	MaxRequestBytes = 32 << 20

	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var allowedExtensions = map[string]string{
	".pdf":  MimePDF,
	".doc":  MimeDOC,
	".docx": MimeDOCX,
}

var allowedContentTypes = map[string]struct{}{
	MimePDF:  {},
	MimeDOC:  {},
	MimeDOCX: {},
}

// IsAllowedType requires a PDF/DOC/DOCX extension. The declared MIME type must
// be one of the three or a generic value browsers send when they do not know.
func IsAllowedType(fileName, mimeType string) bool {
	if _, ok := allowedExtensions[util.Ext(fileName)]; !ok {
		return false
	}
	mt := normalizeMime(mimeType)
	if mt == "" || mt == "application/octet-stream" {
		return true
	}
	_, ok := allowedContentTypes[mt]
	return ok
}

// ContentTypeFor returns the canonical MIME type for an allowed file name.
func ContentTypeFor(fileName string) string {
	return allowedExtensions[util.Ext(fileName)]
}

func normalizeMime(raw string) string {
	mt, _, _ := strings.Cut(raw, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
