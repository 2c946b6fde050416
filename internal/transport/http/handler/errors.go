package handler

const (
	errInternalServer     = "Internal server error"
	errInvalidID          = "Invalid id"
	errUserNotFound       = "User not found"
	errProductNotFound    = "Product not found"
	errImageNotFound      = "Image not found"
	errForbidden          = "You can only modify your own resources"
	errInvalidCredentials = "Invalid email or password"
	errInvalidOTP         = "Invalid or expired OTP"
	errSendOTP            = "Failed to send OTP. Please try again later."
	errCreateAccount      = "Failed to create account. Please try again."
	errInvalidImage       = "Image could not be read"
	errInvalidPrice       = "Price must be a non-negative decimal"
)
