package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DiskStore keeps images in a local directory.
type DiskStore struct {
	dir     string
	now     func() time.Time
	handler http.Handler
}

// NewDiskStore creates dir if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}
	return &DiskStore{
		dir:     dir,
		now:     time.Now,
		handler: http.StripPrefix("/"+URLPrefix+"/", http.FileServer(http.Dir(dir))),
	}, nil
}

func (s *DiskStore) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	filename := objectName(name, s.now())

	f, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write image file: %w", err)
	}
	return URLPrefix + "/" + filename, nil
}

func (s *DiskStore) Remove(_ context.Context, path string) error {
	name, err := nameFromPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("remove image file: %w", err)
	}
	return nil
}

func (s *DiskStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
