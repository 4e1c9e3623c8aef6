// Package uploads validates and stores photo attachments.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"hostelfix/backend/internal/apperr"
	"hostelfix/backend/internal/config"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("uploads: file not found")

// Object describes a stored file for serving.
type Object struct {
	Size        int64
	ContentType string
	ModTime     time.Time
}

// Store is a blob backend keyed by file name.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, *Object, error)
	// Delete is a no-op for names that do not exist.
	Delete(ctx context.Context, name string) error
}

// Manager applies the photo rules in front of a Store.
type Manager struct {
	Store    Store
	MaxBytes int64
	now      func() time.Time
}

func NewManager(store Store, maxBytes int64) *Manager {
	if maxBytes <= 0 {
		maxBytes = config.DefaultUploadMaxBytes
	}
	return &Manager{Store: store, MaxBytes: maxBytes, now: time.Now}
}

// Validate checks extension, declared content type and size.
func (m *Manager) Validate(fh *multipart.FileHeader) error {
	if fh.Size > m.MaxBytes {
		return m.TooLarge()
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !config.AllowedPhotoExtensions[ext] || !config.AllowedPhotoContentTypes[contentType(fh)] {
		return apperr.New(apperr.KindUploadBadType, "Only image files (JPEG, JPG, PNG, GIF) are allowed")
	}
	return nil
}

// TooLarge is the error for a file over MaxBytes.
func (m *Manager) TooLarge() error {
	return apperr.New(apperr.KindUploadTooLarge, fmt.Sprintf("File too large. Maximum size is %dMB", m.MaxBytes>>20))
}

// Save validates the part and stores it under a fresh "<prefix>-..." name.
func (m *Manager) Save(ctx context.Context, fh *multipart.FileHeader, prefix string) (string, error) {
	if err := m.Validate(fh); err != nil {
		return "", err
	}

	f, err := fh.Open()
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	name := m.NewName(prefix, filepath.Ext(fh.Filename))
	if err := m.Store.Save(ctx, name, io.LimitReader(f, m.MaxBytes+1), fh.Size, contentType(fh)); err != nil {
		return "", apperr.Internal(err)
	}
	return name, nil
}

// Delete removes a stored file. It satisfies the services' PhotoRemover.
func (m *Manager) Delete(ctx context.Context, name string) error {
	if err := CheckName(name); err != nil {
		return err
	}
	return m.Store.Delete(ctx, name)
}

func (m *Manager) Open(ctx context.Context, name string) (io.ReadCloser, *Object, error) {
	if err := CheckName(name); err != nil {
		return nil, nil, ErrNotFound
	}
	return m.Store.Open(ctx, name)
}

// NewName builds "<prefix>-<unix ms>-<8 hex><ext>".
func (m *Manager) NewName(prefix, ext string) string {
	return fmt.Sprintf("%s-%d-%s%s", prefix, m.now().UnixMilli(), uuid.New().String()[:8], strings.ToLower(ext))
}

// CheckName rejects anything that is not a plain file name.
func CheckName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || filepath.Base(name) != name {
		return fmt.Errorf("uploads: invalid file name %q", name)
	}
	return nil
}

func contentType(fh *multipart.FileHeader) string {
	mt, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}
