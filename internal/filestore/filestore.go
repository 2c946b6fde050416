// Package filestore keeps user and product images as opaque blobs, namespaced
// by the kind of record that owns them. Records reference blobs by id; the
// store does no reference counting, so deleting a blob is the owner's job.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
	"github.com/ErlanBelekov/campus-marketplace/internal/metrics"
	"github.com/google/uuid"
)

// Backend is the physical storage behind a FileStore. Implementations must be
// safe for concurrent use.
type Backend interface {
	// Write stores data under dir/name, replacing anything already there.
	Write(ctx context.Context, dir, name string, data []byte) error
	// Read returns the full content. Missing blobs yield domain.ErrBlobNotFound.
	Read(ctx context.Context, dir, name string) ([]byte, error)
	// Remove deletes dir/name. A missing blob is not an error.
	Remove(ctx context.Context, dir, name string) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// Location renders dir/name for log messages.
	Location(dir, name string) string
}

type FileStore struct {
	backend Backend
	logger  *slog.Logger
	newID   func() string
}

func New(backend Backend, logger *slog.Logger) *FileStore {
	return &FileStore{
		backend: backend,
		logger:  logger.With("component", "filestore"),
		newID:   uuid.NewString,
	}
}

// Store writes data as a new blob owned by ownerID and returns its id, which
// looks like "product_7_<uuid>.jpg". Empty data is a no-op that returns "".
func (s *FileStore) Store(ctx context.Context, kind domain.BlobKind, ownerID int64, data []byte, originalFilename string) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if !kind.Valid() {
		return "", fmt.Errorf("%w: unknown blob kind %q", domain.ErrStorage, kind)
	}

	blobID := kind.Prefix(ownerID) + s.newID() + extension(originalFilename)

	if err := s.backend.Write(ctx, kind.Dir(), blobID, data); err != nil {
		metrics.BlobOperationsTotal.WithLabelValues(string(kind), "store", "error").Inc()
		s.logger.ErrorContext(ctx, "store blob", "path", s.backend.Location(kind.Dir(), blobID), "error", err)
		return "", fmt.Errorf("%w: store %s: %w", domain.ErrStorage, blobID, err)
	}

	metrics.BlobOperationsTotal.WithLabelValues(string(kind), "store", "ok").Inc()
	return blobID, nil
}

// Load returns the blob content. A missing blob surfaces as an error matching
// both domain.ErrBlobNotFound and domain.ErrNotFound.
func (s *FileStore) Load(ctx context.Context, kind domain.BlobKind, blobID string) ([]byte, error) {
	if !kind.Valid() || !validBlobID(blobID) {
		metrics.BlobOperationsTotal.WithLabelValues(string(kind), "load", "not_found").Inc()
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrNotFound, domain.ErrBlobNotFound, blobID)
	}

	data, err := s.backend.Read(ctx, kind.Dir(), blobID)
	if err != nil {
		if errors.Is(err, domain.ErrBlobNotFound) {
			metrics.BlobOperationsTotal.WithLabelValues(string(kind), "load", "not_found").Inc()
			return nil, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
		}
		metrics.BlobOperationsTotal.WithLabelValues(string(kind), "load", "error").Inc()
		s.logger.ErrorContext(ctx, "load blob", "path", s.backend.Location(kind.Dir(), blobID), "error", err)
		return nil, fmt.Errorf("%w: load %s: %w", domain.ErrStorage, blobID, err)
	}

	metrics.BlobOperationsTotal.WithLabelValues(string(kind), "load", "ok").Inc()
	return data, nil
}

// Delete removes the blob. Deleting something that is not there succeeds.
func (s *FileStore) Delete(ctx context.Context, kind domain.BlobKind, blobID string) error {
	if !kind.Valid() || !validBlobID(blobID) {
		return nil
	}

	if err := s.backend.Remove(ctx, kind.Dir(), blobID); err != nil {
		metrics.BlobOperationsTotal.WithLabelValues(string(kind), "delete", "error").Inc()
		s.logger.ErrorContext(ctx, "delete blob", "path", s.backend.Location(kind.Dir(), blobID), "error", err)
		return fmt.Errorf("%w: delete %s: %w", domain.ErrStorage, blobID, err)
	}

	metrics.BlobOperationsTotal.WithLabelValues(string(kind), "delete", "ok").Inc()
	return nil
}

// Ping is used by the readiness probe.
func (s *FileStore) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// extension returns the original file's extension including the dot, or ""
// when there is none.
func extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	ext := filename[i:]
	if strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}

// validBlobID rejects ids that could escape the namespace directory.
func validBlobID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}
