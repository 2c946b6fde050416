package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
	"github.com/ErlanBelekov/campus-marketplace/internal/repository"
)

const defaultJWTTTL = 24 * time.Hour

type UserUsecase struct {
	users  repository.UserRepository
	blobs  blobStore
	jwtKey []byte
	jwtTTL time.Duration
	logger *slog.Logger
}

func NewUserUsecase(users repository.UserRepository, blobs blobStore, jwtKey []byte, logger *slog.Logger) *UserUsecase {
	return &UserUsecase{
		users:  users,
		blobs:  blobs,
		jwtKey: jwtKey,
		jwtTTL: defaultJWTTTL,
		logger: logger.With("component", "user"),
	}
}

// Login checks the password and returns the user with a signed JWT whose
// subject is the user id.
func (u *UserUsecase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(u.jwtTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.jwtKey)
	if err != nil {
		return nil, "", fmt.Errorf("sign jwt: %w", err)
	}
	return user, signed, nil
}

func (u *UserUsecase) GetProfile(ctx context.Context, id int64) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile overwrites the editable fields. When image is non-empty it
// replaces the current profile image: the new blob is stored and referenced
// before the old one is removed.
func (u *UserUsecase) UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate, image *Upload) (*domain.User, error) {
	current, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	// The image is stored before any field is written, so a storage failure
	// leaves the profile untouched.
	var blobID string
	if !image.empty() {
		blobID, err = u.blobs.Store(ctx, domain.BlobKindUser, id, image.Data, image.Filename)
		if err != nil {
			return nil, fmt.Errorf("store profile image: %w", err)
		}
	}

	updated, err := u.users.UpdateProfile(ctx, id, update)
	if err != nil {
		if blobID != "" {
			_ = u.blobs.Delete(ctx, domain.BlobKindUser, blobID)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if blobID == "" {
		return updated, nil
	}

	if err := u.users.SetProfileImagePath(ctx, id, &blobID); err != nil {
		// the new blob is unreferenced now
		_ = u.blobs.Delete(ctx, domain.BlobKindUser, blobID)
		return nil, fmt.Errorf("set profile image: %w", err)
	}
	updated.ProfileImagePath = &blobID

	if current.HasProfileImage() {
		if err := u.blobs.Delete(ctx, domain.BlobKindUser, *current.ProfileImagePath); err != nil {
			u.logger.WarnContext(ctx, "old profile image not removed", "user_id", id, "error", err)
		}
	}
	return updated, nil
}

// ProfileImage returns the raw image bytes, or an error matching
// domain.ErrNotFound when the user has none.
func (u *UserUsecase) ProfileImage(ctx context.Context, id int64) ([]byte, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.HasProfileImage() {
		return nil, fmt.Errorf("%w: %w", domain.ErrNotFound, domain.ErrBlobNotFound)
	}
	return u.blobs.Load(ctx, domain.BlobKindUser, *user.ProfileImagePath)
}
