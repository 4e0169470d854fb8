// Package storage resolves source locations and owns temp-file allocation
// and registration for run outputs.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Store struct {
	dir string
}

// NewStore roots a store at dir, creating it when missing. An empty dir
// falls back to the OS temp directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Open resolves a source location to a byte stream. file:// URIs and bare
// paths are supported.
func (s *Store) Open(loc string) (io.ReadCloser, error) {
	path, err := toPath(loc)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func toPath(loc string) (string, error) {
	if !strings.Contains(loc, "://") {
		return loc, nil
	}
	u, err := url.Parse(loc)
	if err != nil {
		return "", fmt.Errorf("source %q: %w", loc, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("source %q: unsupported scheme %q", loc, u.Scheme)
	}
	return u.Path, nil
}

// Temp is an output file that is not yet part of any run result: it becomes
// visible through Register, or disappears through Discard.
type Temp struct {
	f    *os.File
	path string
}

func (t *Temp) Write(p []byte) (int, error) { return t.f.Write(p) }
func (t *Temp) Path() string                { return t.path }

// Discard closes and removes a temp file whose run failed.
func (t *Temp) Discard() error {
	_ = t.f.Close()
	if err := os.Remove(t.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// CreateTemp allocates a uniquely named output file under the store dir.
func (s *Store) CreateTemp(prefix, ext string) (*Temp, error) {
	name := fmt.Sprintf("%s_%s%s", prefix, uuid.New().String(), ext)
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	return &Temp{f: f, path: path}, nil
}

// Register closes the temp file and returns its handle as a file:// URI.
// A temp file is registered at most once, and only after a successful run.
func (s *Store) Register(t *Temp) (string, error) {
	if err := t.f.Close(); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(t.path)
	if err != nil {
		return "", err
	}
	return "file://" + abs, nil
}
