package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists attachment bytes. The database rows own the
// linkage; the store is a dumb blob sink keyed by stored name.
type FileStore interface {
	Save(storedName string, r io.Reader) (int64, error)
	Open(storedName string) (io.ReadCloser, error)
	Remove(storedName string) error
}

// LocalStore keeps files in a flat directory on disk.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(storedName string) (string, error) {
	// Stored names are uuid-derived, but reject separators outright.
	if storedName == "" || strings.ContainsAny(storedName, `/\`) {
		return "", fmt.Errorf("invalid stored name: %q", storedName)
	}
	return filepath.Join(s.dir, storedName), nil
}

func (s *LocalStore) Save(storedName string, r io.Reader) (int64, error) {
	p, err := s.path(storedName)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(p)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(p)
		return 0, err
	}
	return n, nil
}

func (s *LocalStore) Open(storedName string) (io.ReadCloser, error) {
	p, err := s.path(storedName)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func (s *LocalStore) Remove(storedName string) error {
	p, err := s.path(storedName)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
