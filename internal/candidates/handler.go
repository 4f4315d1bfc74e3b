package candidates

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/documents"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/metrics"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/server/middleware"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/server/respond"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/telemetry"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/uploads"
)

// FilesField is the multipart field carrying resume files.
const FilesField = "files"

const maxJSONBytes = 1 << 20

// Handler wires HTTP handlers to the candidate services.
type Handler struct {
	Svc          *Service
	Autocomplete *Autocomplete
	Stager       *uploads.Stager
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, ac *Autocomplete, stager *uploads.Stager) *Handler {
	return &Handler{Svc: svc, Autocomplete: ac, Stager: stager}
}

// RegisterRoutes attaches candidate routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/candidates")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/autocomplete/institutions", h.suggest(FieldInstitution))
	g.GET("/autocomplete/companies", h.suggest(FieldCompany))
	g.GET("/:id", h.get)
	g.GET("/:id/documents/:documentId", h.download)
}

func (h *Handler) create(c *gin.Context) {
	sub, staged, parseErrs, ok := h.readSubmission(c)
	defer func() { metrics.AddStagedFilesCleanedUp(staged.Cleanup()) }()
	if !ok {
		return
	}
	if len(parseErrs) > 0 {
		c.Set(middleware.SubmissionKey, string(StateRejected))
		metrics.IncCandidateRejected()
		respond.ValidationError(c, http.StatusBadRequest, "Validation failed", toFieldErrors(parseErrs))
		return
	}

	res, err := h.Svc.Create(c.Request.Context(), sub, staged)
	c.Set(middleware.SubmissionKey, string(res.State))
	if err != nil {
		var vErr *ValidationFailedError
		switch {
		case errors.As(err, &vErr):
			respond.ValidationError(c, http.StatusBadRequest, "Validation failed", toFieldErrors(vErr.Errors))
		case errors.Is(err, ErrEmailConflict):
			respond.Error(c, http.StatusConflict, "A candidate with this email already exists")
		default:
			telemetry.Error("candidate.create_failed", map[string]any{
				"request_id": middleware.RequestIDFromContext(c),
				"state":      string(res.State),
				"err":        err,
			})
			respond.Error(c, http.StatusInternalServerError, "Failed to create candidate")
		}
		return
	}

	c.Set(middleware.CandidateIDKey, res.Candidate.ID)
	respond.Created(c, ToResponse(res.Candidate))
}

// readSubmission accepts either a multipart form with a JSON "candidate" field
// and "files" parts, or a bare JSON body. ok is false when a response has
// already been written.
func (h *Handler) readSubmission(c *gin.Context) (Submission, *uploads.StagedSet, []ValidationError, bool) {
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, uploads.MaxRequestBytes)
		form, err := c.MultipartForm()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respond.Error(c, http.StatusRequestEntityTooLarge, "Request body too large")
			} else {
				respond.Error(c, http.StatusBadRequest, "Invalid multipart form")
			}
			return Submission{}, nil, nil, false
		}
		defer form.RemoveAll()

		staged, err := h.Stager.Stage(form.File[FilesField])
		if err != nil {
			telemetry.Error("uploads.stage_failed", map[string]any{"err": err})
			respond.Error(c, http.StatusInternalServerError, "Failed to process uploaded files")
			return Submission{}, nil, nil, false
		}

		var payload string
		if values := form.Value[PayloadField]; len(values) > 0 {
			payload = values[0]
		}
		sub, errs := ParseSubmission([]byte(payload))
		if len(errs) > 0 {
			errs = append(errs, ValidateFiles(FilesFromStaged(staged))...)
		}
		return sub, staged, errs, true

	case "application/json", "":
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxJSONBytes+1))
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "Invalid request body")
			return Submission{}, nil, nil, false
		}
		if len(body) > maxJSONBytes {
			respond.Error(c, http.StatusRequestEntityTooLarge, "Request body too large")
			return Submission{}, nil, nil, false
		}
		sub, errs := ParseSubmission(body)
		return sub, uploads.Empty(), errs, true

	default:
		respond.Error(c, http.StatusUnsupportedMediaType, "Unsupported content type")
		return Submission{}, nil, nil, false
	}
}

func (h *Handler) list(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", DefaultPageLimit)

	p, err := h.Svc.List(c.Request.Context(), page, limit)
	if err != nil {
		telemetry.Error("candidate.list_failed", map[string]any{"err": err})
		respond.Error(c, http.StatusInternalServerError, "Failed to list candidates")
		return
	}
	respond.OK(c, toListResponse(p))
}

func (h *Handler) get(c *gin.Context) {
	cand, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "Candidate not found")
			return
		}
		telemetry.Error("candidate.get_failed", map[string]any{"err": err})
		respond.Error(c, http.StatusInternalServerError, "Failed to fetch candidate")
		return
	}
	c.Set(middleware.CandidateIDKey, cand.ID)
	respond.OK(c, ToResponse(cand))
}

func (h *Handler) download(c *gin.Context) {
	doc, reader, err := h.Svc.OpenDocument(c.Request.Context(), c.Param("id"), c.Param("documentId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "Candidate not found")
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "Document not found")
		default:
			telemetry.Error("document.open_failed", map[string]any{"err": err})
			respond.Error(c, http.StatusInternalServerError, "Failed to open document")
		}
		return
	}
	defer reader.Close()

	c.Header("Content-Type", doc.MimeType)
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.OriginalName}))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}

func (h *Handler) suggest(field SuggestField) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("query"))
		if QueryTooShort(query) {
			respond.Error(c, http.StatusBadRequest, "Query must be at least 2 characters")
			return
		}
		respond.OK(c, h.Autocomplete.Suggest(c.Request.Context(), field, query))
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
