package repository

import (
	"context"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
)

type UserRepository interface {
	// Create inserts a new user. Returns domain.ErrAlreadyRegistered when the
	// email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate) (*domain.User, error)
	// SetProfileImagePath stores the blob reference; nil clears it.
	SetProfileImagePath(ctx context.Context, id int64, path *string) error
	Delete(ctx context.Context, id int64) error
}
