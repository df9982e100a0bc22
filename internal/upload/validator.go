package upload

import (
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"tasktracker/internal/errors"
)

const (
	// MaxFiles is the maximum number of attachments per request.
	MaxFiles = 3
	// MaxFileSize caps each attachment at 5 MiB.
	MaxFileSize = 5 << 20
	// admissibleType is the only accepted attachment content type.
	admissibleType = "application/pdf"
)

// Validator checks uploaded files and stages accepted ones into a managed
// directory before they reach a task record.
type Validator struct {
	dir string
}

// NewValidator creates a validator persisting files under dir, creating the
// directory if needed.
func NewValidator(dir string) (*Validator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Validator{dir: dir}, nil
}

// Save validates all files and, only if every one passes, writes them to the
// storage directory. Returned paths are in the order the files arrived.
// field is the multipart field name the files came in under; it prefixes the
// stored filename.
func (v *Validator) Save(field string, files []*multipart.FileHeader) ([]string, error) {
	if len(files) > MaxFiles {
		return nil, fmt.Errorf("%w: at most %d files per request", errors.ErrTooManyFiles, MaxFiles)
	}
	for _, fh := range files {
		if fh.Header.Get("Content-Type") != admissibleType {
			return nil, fmt.Errorf("%w: %s", errors.ErrInadmissibleFile, fh.Filename)
		}
		if fh.Size > MaxFileSize {
			return nil, fmt.Errorf("%w: %s", errors.ErrFileTooLarge, fh.Filename)
		}
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		path, err := v.store(field, fh)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (v *Validator) store(field string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%s-%d-%d%s", field, time.Now().UnixMilli(), rand.Int63n(1e9), filepath.Ext(fh.Filename))
	path := filepath.Join(v.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return path, nil
}
