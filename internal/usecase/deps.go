package usecase

import (
	"context"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
)

// blobStore is the subset of *filestore.FileStore the usecases need.
type blobStore interface {
	Store(ctx context.Context, kind domain.BlobKind, ownerID int64, data []byte, originalFilename string) (string, error)
	Load(ctx context.Context, kind domain.BlobKind, blobID string) ([]byte, error)
	Delete(ctx context.Context, kind domain.BlobKind, blobID string) error
}

// Upload is an optional image attached to a create/update request.
type Upload struct {
	Data     []byte
	Filename string
}

func (u *Upload) empty() bool {
	return u == nil || len(u.Data) == 0
}
