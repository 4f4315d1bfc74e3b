package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/util"
)

// StagedFile is an uploaded part written to the request's staging directory.
type StagedFile struct {
	OriginalName string
	MimeType     string
	Size         int64
	Path         string
}

// MaxOriginalNameLen bounds the client file name kept with a staged part.
const MaxOriginalNameLen = 255

// Stager writes uploaded parts below a base directory.
type Stager struct {
	BaseDir string
}

// NewStager returns a stager rooted at baseDir, or the OS temp dir when empty.
func NewStager(baseDir string) *Stager {
	if baseDir == "" {
		baseDir = filepath.Join(os.TempDir(), "candidate-staging")
	}
	return &Stager{BaseDir: baseDir}
}

// StagedSet is the set of files staged for one request. Cleanup must run on
// every exit path; it is safe to call more than once.
type StagedSet struct {
	dir   string
	Files []StagedFile

	once sync.Once
}

// Stage copies every header into a fresh per-request directory. On error the
// partially staged set is already cleaned up.
func (s *Stager) Stage(headers []*multipart.FileHeader) (*StagedSet, error) {
	if err := os.MkdirAll(s.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging base: %w", err)
	}
	dir, err := os.MkdirTemp(s.BaseDir, "req-*")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	set := &StagedSet{dir: dir}
	for i, fh := range headers {
		staged, err := stageOne(dir, i, fh)
		if err != nil {
			set.Cleanup()
			return nil, err
		}
		set.Files = append(set.Files, staged)
	}
	return set, nil
}

// Empty returns a set with no files and no directory.
func Empty() *StagedSet {
	return &StagedSet{}
}

// Dir returns the staging directory of this request.
func (s *StagedSet) Dir() string {
	return s.dir
}

// Len reports the number of staged files.
func (s *StagedSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Files)
}

// Cleanup deletes the staging directory. It returns how many files this call
// removed, so only the first call reports a non-zero count.
func (s *StagedSet) Cleanup() int {
	if s == nil {
		return 0
	}
	removed := 0
	s.once.Do(func() {
		if s.dir == "" {
			return
		}
		for _, f := range s.Files {
			if err := os.Remove(f.Path); err == nil {
				removed++
			}
		}
		_ = os.RemoveAll(s.dir)
	})
	return removed
}

func stageOne(dir string, index int, fh *multipart.FileHeader) (StagedFile, error) {
	name, err := util.SanitizeFileName(fh.Filename)
	if err != nil {
		name = "upload"
	}
	name = util.TruncateFileName(name, MaxOriginalNameLen)
	src, err := fh.Open()
	if err != nil {
		return StagedFile{}, fmt.Errorf("open part %d: %w", index, err)
	}
	defer src.Close()

	path := filepath.Join(dir, fmt.Sprintf("%02d-%s%s", index, util.RandomHex(6), util.Ext(name)))
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return StagedFile{}, fmt.Errorf("create staged file: %w", err)
	}
	written, err := io.Copy(dst, src)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return StagedFile{}, fmt.Errorf("write staged file: %w", err)
	}

	return StagedFile{
		OriginalName: name,
		MimeType:     normalizeMime(fh.Header.Get("Content-Type")),
		Size:         written,
		Path:         path,
	}, nil
}
