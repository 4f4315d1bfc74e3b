package candidates

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/documents"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/storage/object/local"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/telemetry"
	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/uploads"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type upload struct {
	name        string
	contentType string
	body        string
}

func pdfUpload(name string) upload {
	return upload{name: name, contentType: uploads.MimePDF, body: "%PDF-1.4 test content"}
}

func silenceLogs(t *testing.T) {
	t.Helper()
	telemetry.SetOutput(io.Discard)
	t.Cleanup(func() { telemetry.SetOutput(nil) })
}

// stage pushes uploads through a real multipart round trip and the stager.
func stage(t *testing.T, stager *uploads.Stager, files ...upload) *uploads.StagedSet {
	t.Helper()
	if len(files) == 0 {
		return uploads.Empty()
	}
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		fw, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := io.WriteString(fw, f.body); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })

	set, err := stager.Stage(form.File["files"])
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	return set
}

// countFiles returns the regular files under dir.
func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() && !strings.HasPrefix(d.Name(), ".put-") {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	return n
}

type failingStore struct {
	*local.Store
	failOn int
	puts   int
}

func (f *failingStore) Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error) {
	f.puts++
	if f.puts == f.failOn {
		return 0, errors.New("bucket unavailable")
	}
	return f.Store.Put(ctx, key, contentType, r)
}

// stubRepo wraps a MemoryRepo and lets tests inject failures.
type stubRepo struct {
	*MemoryRepo
	createErr error
	findErr   error
	searchErr error
	searches  int
}

func (r *stubRepo) Create(ctx context.Context, c Candidate) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.MemoryRepo.Create(ctx, c)
}

func (r *stubRepo) FindByEmail(ctx context.Context, email string) (Candidate, error) {
	if r.findErr != nil {
		return Candidate{}, r.findErr
	}
	return r.MemoryRepo.FindByEmail(ctx, email)
}

func (r *stubRepo) SearchDistinct(ctx context.Context, field SuggestField, query string, limit int) ([]string, error) {
	r.searches++
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	return r.MemoryRepo.SearchDistinct(ctx, field, query, limit)
}

type fixture struct {
	svc      *Service
	repo     *stubRepo
	store    *failingStore
	stager   *uploads.Stager
	storeDir string
	stageDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	silenceLogs(t)
	storeDir := t.TempDir()
	stageDir := t.TempDir()
	repo := &stubRepo{MemoryRepo: NewMemoryRepo()}
	store := &failingStore{Store: local.New(storeDir)}
	docs := documents.NewService(store)
	docs.Now = func() time.Time { return fixedNow }

	svc := NewService(repo, docs)
	svc.Now = func() time.Time { return fixedNow }
	return &fixture{
		svc:      svc,
		repo:     repo,
		store:    store,
		stager:   uploads.NewStager(stageDir),
		storeDir: storeDir,
		stageDir: stageDir,
	}
}
