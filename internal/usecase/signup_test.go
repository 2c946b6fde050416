package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
	"github.com/ErlanBelekov/campus-marketplace/internal/usecase"
)

const testDomain = "@am.students.amrita.edu"

type signupFixture struct {
	db       *memDB
	otps     *memOtpRepo
	sent     []string
	verifier *usecase.OtpVerifier
	uc       *usecase.SignupUsecase
}

func newSignupFixture(requireOTP bool) *signupFixture {
	f := &signupFixture{db: newMemDB(), otps: newMemOtpRepo()}
	sender := &fakeEmailSender{send: func(_ context.Context, to, _, _ string) error {
		f.sent = append(f.sent, to)
		return nil
	}}
	f.verifier = newVerifier(f.otps, sender, &fakeClock{now: time.Now()})
	f.uc = usecase.NewSignupUsecase(f.db.userRepo(), f.verifier, usecase.SignupConfig{
		EmailDomain:        testDomain,
		RequireVerifiedOTP: requireOTP,
	}, discardLogger)
	return f
}

func TestInitiate_RejectsForeignDomain(t *testing.T) {
	f := newSignupFixture(false)

	for _, email := range []string{"x@gmail.com", "x@am.students.amrita.edu.evil.com", ""} {
		err := f.uc.Initiate(context.Background(), email)
		if !errors.Is(err, domain.ErrValidation) || !errors.Is(err, domain.ErrInvalidEmailDomain) {
			t.Errorf("%q: got %v, want invalid domain", email, err)
		}
	}
	if len(f.otps.records) != 0 || len(f.sent) != 0 {
		t.Error("rejected email must leave no OTP record and send nothing")
	}
}

func TestInitiate_RejectsRegisteredEmail(t *testing.T) {
	f := newSignupFixture(false)
	f.db.addUser(domain.User{Email: testEmail, Name: "A"})

	err := f.uc.Initiate(context.Background(), testEmail)
	if !errors.Is(err, domain.ErrAlreadyRegistered) || !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("got %v, want already registered", err)
	}
	if len(f.sent) != 0 {
		t.Error("no OTP should be sent to a registered email")
	}
}

func TestInitiate_PropagatesLookupError(t *testing.T) {
	f := newSignupFixture(false)
	f.db.existsErr = errors.New("db down")

	err := f.uc.Initiate(context.Background(), testEmail)
	if err == nil || errors.Is(err, domain.ErrValidation) {
		t.Fatalf("got %v, want infrastructure error", err)
	}
}

func TestInitiate_DeliveryFailure(t *testing.T) {
	db := newMemDB()
	otps := newMemOtpRepo()
	sender := &fakeEmailSender{send: func(context.Context, string, string, string) error {
		return errors.New("smtp down")
	}}
	uc := usecase.NewSignupUsecase(db.userRepo(), newVerifier(otps, sender, &fakeClock{now: time.Now()}),
		usecase.SignupConfig{EmailDomain: testDomain}, discardLogger)

	err := uc.Initiate(context.Background(), testEmail)
	if !errors.Is(err, domain.ErrEmailDelivery) {
		t.Fatalf("got %v, want email delivery error", err)
	}
	if _, ok := otps.get(testEmail); !ok {
		t.Error("code should be stored even though delivery failed")
	}
}

func TestSignup_HappyPath(t *testing.T) {
	f := newSignupFixture(false)
	ctx := context.Background()

	if err := f.uc.Initiate(ctx, testEmail); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	rec, _ := f.otps.get(testEmail)

	ok, err := f.uc.VerifyOTP(ctx, testEmail, rec.Code)
	if err != nil || !ok {
		t.Fatalf("verify: ok=%v err=%v", ok, err)
	}

	user, err := f.uc.Complete(ctx, usecase.CompleteSignupInput{Email: testEmail, Password: "hunter22", Name: "Asha"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if user.ID == 0 || user.Email != testEmail || user.Name != "Asha" {
		t.Errorf("unexpected user %+v", user)
	}
	if user.PasswordHash == "hunter22" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")) != nil {
		t.Error("password must be stored as a bcrypt hash")
	}

	// a second initiate for the same address is now refused
	if err := f.uc.Initiate(ctx, testEmail); !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Errorf("got %v, want already registered", err)
	}
}

func TestComplete_PersistenceFailureIsCreationFailed(t *testing.T) {
	f := newSignupFixture(false)
	f.db.createUserErr = errors.New("connection reset")

	_, err := f.uc.Complete(context.Background(), usecase.CompleteSignupInput{Email: testEmail, Password: "pw", Name: "A"})
	if !errors.Is(err, domain.ErrCreationFailed) {
		t.Fatalf("got %v, want creation failed", err)
	}
}

func TestComplete_DuplicateIsCreationFailed(t *testing.T) {
	f := newSignupFixture(false)
	f.db.addUser(domain.User{Email: testEmail})

	_, err := f.uc.Complete(context.Background(), usecase.CompleteSignupInput{Email: testEmail, Password: "pw", Name: "A"})
	if !errors.Is(err, domain.ErrCreationFailed) || !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Fatalf("got %v", err)
	}
}

func TestComplete_WithoutOTPGateAcceptsUnverifiedEmail(t *testing.T) {
	f := newSignupFixture(false)

	if _, err := f.uc.Complete(context.Background(), usecase.CompleteSignupInput{Email: testEmail, Password: "pw", Name: "A"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestComplete_OTPGate(t *testing.T) {
	f := newSignupFixture(true)
	ctx := context.Background()
	input := usecase.CompleteSignupInput{Email: testEmail, Password: "pw", Name: "A"}

	_, err := f.uc.Complete(ctx, input)
	if !errors.Is(err, domain.ErrOTPNotVerified) {
		t.Fatalf("got %v, want otp not verified", err)
	}

	if err := f.uc.Initiate(ctx, testEmail); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if _, err := f.uc.Complete(ctx, input); !errors.Is(err, domain.ErrOTPNotVerified) {
		t.Fatalf("pending otp: got %v, want otp not verified", err)
	}

	rec, _ := f.otps.get(testEmail)
	if ok, _ := f.uc.VerifyOTP(ctx, testEmail, rec.Code); !ok {
		t.Fatal("verify failed")
	}
	if _, err := f.uc.Complete(ctx, input); err != nil {
		t.Fatalf("verified otp: %v", err)
	}
}

func TestInitiate_DomainCheckIsCaseSensitiveSuffix(t *testing.T) {
	f := newSignupFixture(false)
	err := f.uc.Initiate(context.Background(), strings.ToUpper(testEmail))
	if !errors.Is(err, domain.ErrInvalidEmailDomain) {
		t.Errorf("got %v, want invalid domain", err)
	}
}
