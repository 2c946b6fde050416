package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
	"github.com/jackc/pgx/v5"
)

type OtpRepository struct {
	db DBTX
}

func NewOtpRepository(db DBTX) *OtpRepository {
	return &OtpRepository{db: db}
}

func (r *OtpRepository) FindByEmail(ctx context.Context, email string) (*domain.OtpRecord, error) {
	row := r.db.QueryRow(ctx, `
		SELECT email, code, expires_at, verified, created_at
		FROM otp_verifications
		WHERE email = $1`, email)
	return scanOtp(row)
}

func (r *OtpRepository) FindByEmailAndCode(ctx context.Context, email, code string) (*domain.OtpRecord, error) {
	row := r.db.QueryRow(ctx, `
		SELECT email, code, expires_at, verified, created_at
		FROM otp_verifications
		WHERE email = $1 AND code = $2`, email, code)
	return scanOtp(row)
}

// Save upserts on email. Concurrent saves for the same email are last-write-wins.
func (r *OtpRepository) Save(ctx context.Context, rec *domain.OtpRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO otp_verifications (email, code, expires_at, verified, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET code       = EXCLUDED.code,
		    expires_at = EXCLUDED.expires_at,
		    verified   = EXCLUDED.verified,
		    created_at = EXCLUDED.created_at`,
		rec.Email, rec.Code, rec.ExpiresAt, rec.Verified, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

func (r *OtpRepository) MarkVerified(ctx context.Context, email, code string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE otp_verifications SET verified = TRUE WHERE email = $1 AND code = $2`, email, code)
	if err != nil {
		return false, fmt.Errorf("mark otp verified: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OtpRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM otp_verifications
		WHERE email IN (
			SELECT email FROM otp_verifications
			WHERE  expires_at < $1
			ORDER BY expires_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)`, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("delete expired otps: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// scanOtp returns (nil, nil) when no row matched: a missing code is a normal
// outcome for the verifier, not an error.
func scanOtp(row rowScanner) (*domain.OtpRecord, error) {
	var o domain.OtpRecord
	err := row.Scan(&o.Email, &o.Code, &o.ExpiresAt, &o.Verified, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan otp: %w", err)
	}
	return &o, nil
}
