// Package storage holds uploaded audio artifacts between session end and
// report generation. Nothing here survives pipeline completion: artifacts
// are deleted after their transcription attempt, success or failure.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrBadHandle = errors.New("invalid artifact handle")

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes one uploaded artifact and returns its opaque handle. The
// original filename only contributes its extension.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	ext := filepath.Ext(filename)
	handle := fmt.Sprintf("audio-%s%s", uuid.NewString(), ext)

	f, err := os.Create(filepath.Join(s.dir, handle))
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write artifact: %w", err)
	}
	log.Info().Str("module", "storage").Str("handle", handle).Msg("audio artifact stored")
	return handle, nil
}

// Open returns the artifact's bytes for transcription.
func (s *Store) Open(handle string) (io.ReadCloser, error) {
	path, err := s.path(handle)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Delete removes the raw bytes. Idempotent: deleting an absent artifact is
// not an error.
func (s *Store) Delete(handle string) error {
	path, err := s.path(handle)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete artifact: %w", err)
	}
	log.Info().Str("module", "storage").Str("handle", handle).Msg("audio artifact deleted")
	return nil
}

// Exists reports whether raw bytes remain for the handle.
func (s *Store) Exists(handle string) bool {
	path, err := s.path(handle)
	if err != nil {
		return false
	}
	_, statErr := os.Stat(path)
	return statErr == nil
}

// path rejects handles that try to escape the store directory.
func (s *Store) path(handle string) (string, error) {
	if handle == "" || strings.ContainsAny(handle, `/\`) || strings.Contains(handle, "..") {
		return "", ErrBadHandle
	}
	return filepath.Join(s.dir, handle), nil
}
