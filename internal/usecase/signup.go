package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
	"github.com/ErlanBelekov/campus-marketplace/internal/metrics"
	"github.com/ErlanBelekov/campus-marketplace/internal/repository"
)

type otpService interface {
	Generate(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, code string) (bool, error)
	IsVerified(ctx context.Context, email string) (bool, error)
}

// SignupUsecase runs the three-step signup: initiate (domain check + OTP),
// verify OTP, complete (account creation).
type SignupUsecase struct {
	users        repository.UserRepository
	otp          otpService
	emailDomain  string
	requireOTP   bool
	passwordCost int
	logger       *slog.Logger
}

type SignupConfig struct {
	// EmailDomain is the required suffix, e.g. "@am.students.amrita.edu".
	EmailDomain string
	// RequireVerifiedOTP makes Complete refuse emails without a live verified OTP.
	RequireVerifiedOTP bool
}

func NewSignupUsecase(users repository.UserRepository, otp otpService, cfg SignupConfig, logger *slog.Logger) *SignupUsecase {
	return &SignupUsecase{
		users:        users,
		otp:          otp,
		emailDomain:  cfg.EmailDomain,
		requireOTP:   cfg.RequireVerifiedOTP,
		passwordCost: bcrypt.DefaultCost,
		logger:       logger.With("component", "signup"),
	}
}

// Initiate validates the email and sends it an OTP. Nothing is persisted
// when the email is rejected.
func (u *SignupUsecase) Initiate(ctx context.Context, email string) error {
	if !strings.HasSuffix(email, u.emailDomain) {
		return fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrInvalidEmailDomain)
	}

	exists, err := u.users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrAlreadyRegistered)
	}

	if _, err := u.otp.Generate(ctx, email); err != nil {
		if errors.Is(err, domain.ErrDelivery) {
			u.logger.ErrorContext(ctx, "otp delivery failed", "email", email, "error", err)
		}
		return err
	}
	return nil
}

func (u *SignupUsecase) VerifyOTP(ctx context.Context, email, code string) (bool, error) {
	return u.otp.Verify(ctx, email, code)
}

type CompleteSignupInput struct {
	Email     string
	Password  string
	Name      string
	Programme *string
	Branch    *string
	Year      *int
	Semester  *int
	PhoneNo   *string
}

// Complete creates the account. Any persistence failure is reported as
// domain.ErrCreationFailed.
func (u *SignupUsecase) Complete(ctx context.Context, input CompleteSignupInput) (*domain.User, error) {
	if u.requireOTP {
		ok, err := u.otp.IsVerified(ctx, input.Email)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrCreationFailed, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrOTPNotVerified)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), u.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %w", domain.ErrCreationFailed, err)
	}

	user, err := u.users.Create(ctx, &domain.User{
		Email:        input.Email,
		PasswordHash: string(hash),
		Name:         input.Name,
		Programme:    input.Programme,
		Branch:       input.Branch,
		Year:         input.Year,
		Semester:     input.Semester,
		PhoneNo:      input.PhoneNo,
	})
	if err != nil {
		u.logger.ErrorContext(ctx, "create user failed", "email", input.Email, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrCreationFailed, err)
	}

	metrics.SignupsCompletedTotal.Inc()
	u.logger.InfoContext(ctx, "account created", "user_id", user.ID)
	return user, nil
}
