// Package storage writes uploaded files to a local directory under
// server-assigned, collision-resistant names. Metadata consistency is the
// store's job; this package only moves bytes.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Storage is the physical home of attachment files.
type Storage struct {
	dir    string
	logger *zap.Logger
}

// New creates the upload directory if needed and returns a Storage.
func New(dir string, logger *zap.Logger) (*Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &Storage{dir: dir, logger: logger}, nil
}

// Dir returns the upload directory path.
func (s *Storage) Dir() string {
	return s.dir
}

// Path returns the full path of a stored file.
func (s *Storage) Path(storedName string) string {
	return filepath.Join(s.dir, storedName)
}

// Save writes the content to a freshly named file and returns the assigned
// stored name and the number of bytes written. The original filename only
// contributes its extension; the rest is discarded.
func (s *Storage) Save(originalName string, content io.Reader) (string, int64, error) {
	storedName := uuid.NewString() + sanitizeExt(originalName)
	path := s.Path(storedName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create %s: %w", storedName, err)
	}

	size, err := io.Copy(f, content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to write %s: %w", storedName, err)
	}

	s.logger.Debug("File stored",
		zap.String("stored_name", storedName),
		zap.String("original_name", originalName),
		zap.Int64("size", size))

	return storedName, size, nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *Storage) Remove(storedName string) error {
	err := os.Remove(s.Path(storedName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", storedName, err)
	}
	return nil
}

// RemoveAll deletes the given stored files best-effort. Failures are logged
// and never abort the cleanup of the remaining files.
func (s *Storage) RemoveAll(storedNames []string) {
	for _, name := range storedNames {
		if err := s.Remove(name); err != nil {
			s.logger.Warn("Failed to remove stored file",
				zap.String("stored_name", name),
				zap.Error(err))
		}
	}
}

// Exists reports whether a stored file is present on disk.
func (s *Storage) Exists(storedName string) bool {
	_, err := os.Stat(s.Path(storedName))
	return err == nil
}

func sanitizeExt(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if ext == "" || len(ext) > 16 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
