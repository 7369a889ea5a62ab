package credstore

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FileStore keeps the credential in a single file so it survives process
// restarts. The filesystem is abstracted behind afero so tests can run
// against an in-memory filesystem.
type FileStore struct {
	fs   afero.Fs
	path string
}

// NewFileStore creates a FileStore persisting to path on the given filesystem.
func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

// NewOsFileStore creates a FileStore on the real filesystem.
func NewOsFileStore(path string) *FileStore {
	return NewFileStore(afero.NewOsFs(), path)
}

// Path returns the location of the credential file.
func (s *FileStore) Path() string { return s.path }

// Token reads the stored credential. A missing file is the anonymous state,
// not an error.
func (s *FileStore) Token() (string, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the credential with owner-only permissions.
func (s *FileStore) Save(token string) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return afero.WriteFile(s.fs, s.path, []byte(token+"\n"), 0o600)
}

// Clear removes the credential file. Clearing an already-empty slot succeeds.
func (s *FileStore) Clear() error {
	if err := s.fs.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
