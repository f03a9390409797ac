// Package uploads stores event images on local disk.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultMaxBytes caps image uploads at 5MB.
const DefaultMaxBytes int64 = 5 << 20

var (
	ErrNotAnImage = errors.New("uploaded file must be an image")
	ErrTooLarge   = errors.New("uploaded file exceeds the size limit")
)

// Store writes uploaded images under a base directory and hands back the
// relative reference persisted with the event.
type Store struct {
	dir      string
	maxBytes int64
	logger   zerolog.Logger
}

func NewStore(dir string, maxBytes int64, logger zerolog.Logger) (*Store, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{
		dir:      dir,
		maxBytes: maxBytes,
		logger:   logger.With().Str("component", "uploads").Logger(),
	}, nil
}

// Save persists the uploaded file and returns its reference. Only image/*
// content types are accepted; a random prefix keeps concurrent uploads of
// the same filename from colliding.
func (s *Store) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return "", ErrNotAnImage
	}
	if header.Size > s.maxBytes {
		return "", ErrTooLarge
	}

	name := uuid.NewString() + "-" + sanitizeFilename(header.Filename)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	// The request body is already capped upstream, but the header size can
	// lie; copy through a hard limit anyway.
	written, err := io.Copy(dst, io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if written > s.maxBytes {
		_ = os.Remove(path)
		return "", ErrTooLarge
	}

	s.logger.Debug().Str("file", name).Int64("bytes", written).Msg("image stored")
	return name, nil
}

// Remove deletes a previously stored image. A missing file is not an
// error: the reference may already have been cleaned up.
func (s *Store) Remove(ref string) {
	if ref == "" {
		return
	}
	path := filepath.Join(s.dir, filepath.Base(ref))
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn().Err(err).Str("file", ref).Msg("image cleanup failed")
	}
}

// Open returns the stored file for serving. The reference is reduced to
// its base name so crafted values cannot escape the uploads directory.
func (s *Store) Open(ref string) (*os.File, error) {
	return os.Open(filepath.Join(s.dir, filepath.Base(ref)))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}
