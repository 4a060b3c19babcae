package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrBlobNotFound is returned when the named blob does not exist.
var ErrBlobNotFound = errors.New("blob not found")

// Store persists document blobs on a filesystem abstraction. Blob names are
// generated by the caller and treated as opaque keys within the upload
// directory.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore builds a store rooted at dir on the OS filesystem.
func NewStore(dir string) (*Store, error) {
	return NewStoreWithFs(afero.NewOsFs(), dir)
}

// NewStoreWithFs builds a store on an explicit filesystem. Tests pass an
// in-memory filesystem here.
func NewStoreWithFs(fs afero.Fs, dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := fs.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{fs: fs, dir: dir}, nil
}

func (s *Store) path(name string) string {
	// Keys are generated server side, but never trust a joined path to
	// stay inside the upload directory.
	return filepath.Join(s.dir, filepath.Base(name))
}

// Save writes the blob contents under name, replacing any existing blob.
func (s *Store) Save(name string, r io.Reader) (int64, error) {
	f, err := s.fs.OpenFile(s.path(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return 0, fmt.Errorf("failed to open blob for writing: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return n, fmt.Errorf("failed to write blob: %w", err)
	}
	return n, nil
}

// Open returns a reader over the stored blob. The caller closes it.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	f, err := s.fs.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

// Read returns the full blob contents.
func (s *Store) Read(name string) ([]byte, error) {
	f, err := s.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// Exists reports whether a blob is present for name.
func (s *Store) Exists(name string) (bool, error) {
	ok, err := afero.Exists(s.fs, s.path(name))
	if err != nil {
		return false, fmt.Errorf("failed to stat blob: %w", err)
	}
	return ok, nil
}

// Remove deletes the blob. Removing a missing blob is not an error.
func (s *Store) Remove(name string) error {
	err := s.fs.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove blob: %w", err)
	}
	return nil
}
