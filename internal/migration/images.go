// Package migration moves images that older deployments stored inline in the
// database into the blob store.
package migration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
)

const legacyFilename = "legacy.jpg"

type LegacyImage struct {
	OwnerID int64
	Data    []byte
}

type LegacySource interface {
	HasLegacyColumn(ctx context.Context, kind domain.BlobKind) (bool, error)
	// Pending lists rows with id > afterID, ordered by id.
	Pending(ctx context.Context, kind domain.BlobKind, afterID int64, limit int) ([]LegacyImage, error)
	Complete(ctx context.Context, kind domain.BlobKind, ownerID int64, blobID string) error
}

type blobWriter interface {
	Store(ctx context.Context, kind domain.BlobKind, ownerID int64, data []byte, originalFilename string) (string, error)
	Delete(ctx context.Context, kind domain.BlobKind, blobID string) error
}

type Result struct {
	Migrated int
	Failed   int
}

type ImageMigrator struct {
	source    LegacySource
	blobs     blobWriter
	logger    *slog.Logger
	batchSize int
}

func NewImageMigrator(source LegacySource, blobs blobWriter, logger *slog.Logger) *ImageMigrator {
	return &ImageMigrator{
		source:    source,
		blobs:     blobs,
		logger:    logger.With("component", "image_migration"),
		batchSize: 50,
	}
}

// Run migrates user images and then product images. It is safe to re-run:
// only rows that still hold inline bytes and no blob reference are touched.
// A row that fails is logged, counted and left for the next run.
func (m *ImageMigrator) Run(ctx context.Context) (map[domain.BlobKind]Result, error) {
	results := make(map[domain.BlobKind]Result, 2)
	for _, kind := range []domain.BlobKind{domain.BlobKindUser, domain.BlobKindProduct} {
		res, err := m.migrateKind(ctx, kind)
		if err != nil {
			return results, err
		}
		results[kind] = res
	}
	return results, nil
}

func (m *ImageMigrator) migrateKind(ctx context.Context, kind domain.BlobKind) (Result, error) {
	var res Result

	ok, err := m.source.HasLegacyColumn(ctx, kind)
	if err != nil {
		return res, err
	}
	if !ok {
		m.logger.InfoContext(ctx, "no legacy column, skipping", "kind", kind)
		return res, nil
	}

	var after int64
	for {
		batch, err := m.source.Pending(ctx, kind, after, m.batchSize)
		if err != nil {
			return res, err
		}

		for _, img := range batch {
			after = img.OwnerID
			if err := m.migrateOne(ctx, kind, img); err != nil {
				m.logger.ErrorContext(ctx, "migrate image", "kind", kind, "owner_id", img.OwnerID, "error", err)
				res.Failed++
				continue
			}
			res.Migrated++
		}

		if len(batch) < m.batchSize {
			break
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
	}

	m.logger.InfoContext(ctx, "legacy images migrated", "kind", kind, "migrated", res.Migrated, "failed", res.Failed)
	return res, nil
}

func (m *ImageMigrator) migrateOne(ctx context.Context, kind domain.BlobKind, img LegacyImage) error {
	if len(img.Data) == 0 {
		return fmt.Errorf("empty legacy image")
	}
	blobID, err := m.blobs.Store(ctx, kind, img.OwnerID, img.Data, legacyFilename)
	if err != nil {
		return err
	}
	if err := m.source.Complete(ctx, kind, img.OwnerID, blobID); err != nil {
		_ = m.blobs.Delete(ctx, kind, blobID)
		return err
	}
	return nil
}
