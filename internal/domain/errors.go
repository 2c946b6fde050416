package domain

import "errors"

// Error classes. Specific errors below are wrapped together with their class
// so handlers can match either one with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrDelivery   = errors.New("delivery failed")
	ErrStorage    = errors.New("storage failure")
)

var (
	ErrInvalidEmailDomain = errors.New("email must belong to the institutional domain")
	ErrAlreadyRegistered  = errors.New("an account with this email already exists")
	ErrOTPNotVerified     = errors.New("email has not been verified")
	ErrCreationFailed     = errors.New("failed to create account")
	ErrEmailDelivery      = errors.New("failed to send OTP, please try again later")

	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrBlobNotFound    = errors.New("blob not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
)
