package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
	"github.com/ErlanBelekov/campus-marketplace/internal/metrics"
	"github.com/ErlanBelekov/campus-marketplace/internal/repository"
)

// AccountUsecase removes a user together with everything they own.
type AccountUsecase struct {
	tx     repository.Transactor
	blobs  blobStore
	logger *slog.Logger
}

func NewAccountUsecase(tx repository.Transactor, blobs blobStore, logger *slog.Logger) *AccountUsecase {
	return &AccountUsecase{tx: tx, blobs: blobs, logger: logger.With("component", "account")}
}

// DeleteUser returns false when the user does not exist. Otherwise, for each
// product the user sells, its image blob goes first and then its record;
// after that the profile blob and finally the user record. Record deletions
// share one transaction. A blob that cannot be removed is logged and left
// behind as an orphaned file. Blobs are deleted before the transaction
// commits, so a rollback after that point leaves records referencing blobs
// that are already gone; loading those yields ErrBlobNotFound.
func (u *AccountUsecase) DeleteUser(ctx context.Context, userID int64) (bool, error) {
	err := u.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := repos.Users.FindByID(ctx, userID)
		if err != nil {
			return err
		}

		products, err := repos.Products.FindBySeller(ctx, userID)
		if err != nil {
			return fmt.Errorf("list products of user %d: %w", userID, err)
		}

		for _, p := range products {
			if p.HasImage() {
				u.removeBlob(ctx, domain.BlobKindProduct, *p.ImagePath)
			}
			if err := repos.Products.Delete(ctx, p.ID); err != nil && !errors.Is(err, domain.ErrProductNotFound) {
				return fmt.Errorf("delete product %d: %w", p.ID, err)
			}
		}

		if user.HasProfileImage() {
			u.removeBlob(ctx, domain.BlobKindUser, *user.ProfileImagePath)
		}

		if err := repos.Users.Delete(ctx, userID); err != nil {
			return err
		}
		return nil
	})

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		metrics.AccountDeletionsTotal.WithLabelValues("not_found").Inc()
		return false, nil
	case err != nil:
		metrics.AccountDeletionsTotal.WithLabelValues("failed").Inc()
		return false, fmt.Errorf("delete user %d: %w", userID, err)
	}

	metrics.AccountDeletionsTotal.WithLabelValues("deleted").Inc()
	u.logger.InfoContext(ctx, "account deleted", "user_id", userID)
	return true, nil
}

func (u *AccountUsecase) removeBlob(ctx context.Context, kind domain.BlobKind, blobID string) {
	if err := u.blobs.Delete(ctx, kind, blobID); err != nil {
		u.logger.WarnContext(ctx, "blob not removed", "kind", kind, "blob_id", blobID, "error", err)
	}
}
