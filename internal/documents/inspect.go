package documents

import (
	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/telemetry"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/uploads"
)

// detectMime sniffs the staged file content. Failures yield "".
func detectMime(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	return mt.String()
}

// pageCount reads the page count of a PDF. Unreadable PDFs report 0; the
// file is still accepted because type checks use the declared type.
func pageCount(path, mimeType string) (n int) {
	if mimeType != uploads.MimePDF {
		return 0
	}
	defer func() {
		if rec := recover(); rec != nil {
			telemetry.Warn("documents.pdf_inspect_panic", map[string]any{"error": rec})
			n = 0
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()
	return r.NumPage()
}
