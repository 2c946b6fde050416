package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
	"github.com/ErlanBelekov/campus-marketplace/internal/migration"
)

// legacyColumns maps a blob kind to (table, bytes column, path column).
var legacyColumns = map[domain.BlobKind][3]string{
	domain.BlobKindUser:    {"users", "profile_image", "profile_image_path"},
	domain.BlobKindProduct: {"products", "image", "image_path"},
}

// LegacyImageRepository reads images stored inline as BYTEA by older schema
// versions. The columns are optional; fresh databases never had them.
type LegacyImageRepository struct {
	db DBTX
}

func NewLegacyImageRepository(db DBTX) *LegacyImageRepository {
	return &LegacyImageRepository{db: db}
}

func (r *LegacyImageRepository) HasLegacyColumn(ctx context.Context, kind domain.BlobKind) (bool, error) {
	cols, ok := legacyColumns[kind]
	if !ok {
		return false, fmt.Errorf("unknown blob kind %q", kind)
	}

	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1 AND column_name = $2
		)`, cols[0], cols[1]).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("inspect %s.%s: %w", cols[0], cols[1], err)
	}
	return exists, nil
}

// Pending returns up to limit rows after afterID that still carry inline
// bytes and no blob reference, ordered by id.
func (r *LegacyImageRepository) Pending(ctx context.Context, kind domain.BlobKind, afterID int64, limit int) ([]migration.LegacyImage, error) {
	cols := legacyColumns[kind]
	query := fmt.Sprintf(`
		SELECT id, %[2]s FROM %[1]s
		WHERE id > $1 AND %[2]s IS NOT NULL AND %[3]s IS NULL
		ORDER BY id
		LIMIT $2`, pgx.Identifier{cols[0]}.Sanitize(), pgx.Identifier{cols[1]}.Sanitize(), pgx.Identifier{cols[2]}.Sanitize())

	rows, err := r.db.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list legacy %s images: %w", kind, err)
	}
	defer rows.Close()

	var out []migration.LegacyImage
	for rows.Next() {
		var img migration.LegacyImage
		if err := rows.Scan(&img.OwnerID, &img.Data); err != nil {
			return nil, fmt.Errorf("scan legacy %s image: %w", kind, err)
		}
		out = append(out, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate legacy %s images: %w", kind, err)
	}
	return out, nil
}

// Complete points the row at its new blob and drops the inline bytes in one
// statement, so a row is either fully migrated or not at all.
func (r *LegacyImageRepository) Complete(ctx context.Context, kind domain.BlobKind, ownerID int64, blobID string) error {
	cols := legacyColumns[kind]
	query := fmt.Sprintf(`UPDATE %[1]s SET %[3]s = $2, %[2]s = NULL WHERE id = $1`,
		pgx.Identifier{cols[0]}.Sanitize(), pgx.Identifier{cols[1]}.Sanitize(), pgx.Identifier{cols[2]}.Sanitize())

	if _, err := r.db.Exec(ctx, query, ownerID, blobID); err != nil {
		return fmt.Errorf("complete legacy %s image %d: %w", kind, ownerID, err)
	}
	return nil
}
