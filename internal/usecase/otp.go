package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
	"github.com/ErlanBelekov/campus-marketplace/internal/email"
	"github.com/ErlanBelekov/campus-marketplace/internal/metrics"
	"github.com/ErlanBelekov/campus-marketplace/internal/repository"
)

const (
	otpMin   = 100000
	otpRange = 900000 // codes fall in [100000, 999999]
)

// OtpVerifier issues and checks email one-time codes. Per email the record
// moves NONE -> PENDING -> VERIFIED; a new Generate starts over at PENDING.
type OtpVerifier struct {
	otps   repository.OtpRepository
	email  email.Sender
	logger *slog.Logger
	now    func() time.Time
}

func NewOtpVerifier(otps repository.OtpRepository, sender email.Sender, logger *slog.Logger) *OtpVerifier {
	return &OtpVerifier{
		otps:   otps,
		email:  sender,
		logger: logger.With("component", "otp"),
		now:    time.Now,
	}
}

// WithClock replaces the time source used for expiry.
func (v *OtpVerifier) WithClock(now func() time.Time) *OtpVerifier {
	v.now = now
	return v
}

// Generate stores a fresh code for emailAddr, replacing any previous one, and
// emails it. The record is saved before sending, so a delivery failure still
// leaves a usable code behind; the failure is returned as domain.ErrDelivery.
func (v *OtpVerifier) Generate(ctx context.Context, emailAddr string) (string, error) {
	code, err := newOTPCode()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	now := v.now()
	rec := &domain.OtpRecord{
		Email:     emailAddr,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(domain.OTPValidity),
		Verified:  false,
	}
	if err := v.otps.Save(ctx, rec); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}

	subject, body := otpMessage(code)
	if err := v.email.Send(ctx, emailAddr, subject, body); err != nil {
		metrics.OTPIssuedTotal.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("%w: %w: %w", domain.ErrDelivery, domain.ErrEmailDelivery, err)
	}

	metrics.OTPIssuedTotal.WithLabelValues("sent").Inc()
	return code, nil
}

// Verify reports whether code is the live, unexpired code for emailAddr and
// marks it verified. A wrong code, a missing record and an expired record all
// give false with no error; an expired record is left untouched. Verifying an
// already verified code again inside its window gives true.
func (v *OtpVerifier) Verify(ctx context.Context, emailAddr, code string) (bool, error) {
	rec, err := v.otps.FindByEmailAndCode(ctx, emailAddr, code)
	if err != nil {
		return false, fmt.Errorf("find otp: %w", err)
	}
	if rec == nil {
		metrics.OTPVerificationsTotal.WithLabelValues("mismatch").Inc()
		return false, nil
	}
	if rec.Expired(v.now()) {
		metrics.OTPVerificationsTotal.WithLabelValues("expired").Inc()
		return false, nil
	}

	// Conditional on the code so a Generate racing in between is not overwritten.
	marked, err := v.otps.MarkVerified(ctx, emailAddr, code)
	if err != nil {
		return false, fmt.Errorf("mark otp verified: %w", err)
	}
	if !marked {
		metrics.OTPVerificationsTotal.WithLabelValues("mismatch").Inc()
		return false, nil
	}

	metrics.OTPVerificationsTotal.WithLabelValues("ok").Inc()
	return true, nil
}

// IsVerified reports whether the live record for emailAddr is verified and
// still inside its window.
func (v *OtpVerifier) IsVerified(ctx context.Context, emailAddr string) (bool, error) {
	rec, err := v.otps.FindByEmail(ctx, emailAddr)
	if err != nil {
		return false, fmt.Errorf("find otp: %w", err)
	}
	return rec != nil && rec.Verified && !rec.Expired(v.now()), nil
}

func newOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpRange))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(otpMin+n.Int64(), 10), nil
}

func otpMessage(code string) (subject, body string) {
	subject = "GradGear - Your OTP for Account Verification"
	body = fmt.Sprintf(
		"Your OTP for GradGear account verification is: %s\n\nThis OTP will expire in %d minutes.\n\nRegards,\nGradGear Team",
		code, int(domain.OTPValidity/time.Minute),
	)
	return subject, body
}
