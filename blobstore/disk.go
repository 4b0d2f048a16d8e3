package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"photo-board/models"
	"strings"

	"github.com/natefinch/atomic"
)

// DiskStore keeps objects as files in one directory, served under /uploads.
// Content types are not recorded; the file server derives them from the
// extension.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating uploads directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Put(ctx context.Context, name string, r io.Reader, _ string, public bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", models.ErrInvalidBlobName, name)
	}

	path := filepath.Join(s.dir, name)
	if err := atomic.WriteFile(path, r); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	mode := os.FileMode(0600)
	if public {
		mode = 0644
	}
	return os.Chmod(path, mode)
}

func (s *DiskStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}
