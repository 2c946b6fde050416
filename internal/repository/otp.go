package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
)

type OtpRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.OtpRecord, error)
	// FindByEmailAndCode matches both fields exactly. Returns (nil, nil) when
	// there is no such record.
	FindByEmailAndCode(ctx context.Context, email, code string) (*domain.OtpRecord, error)
	// Save upserts keyed by email: last write wins.
	Save(ctx context.Context, rec *domain.OtpRecord) error
	// MarkVerified flags the record only if it still holds code. Returns false
	// when the code was replaced in the meantime.
	MarkVerified(ctx context.Context, email, code string) (bool, error)

	// DeleteExpiredBefore is used by the reaper only, never by the verifier.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time, limit int) (int, error)
}
