package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
	"github.com/ErlanBelekov/campus-marketplace/internal/usecase"
)

// signupUsecaser is the subset of SignupUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type signupUsecaser interface {
	Initiate(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (bool, error)
	Complete(ctx context.Context, input usecase.CompleteSignupInput) (*domain.User, error)
}

type loginUsecaser interface {
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
}

type AuthHandler struct {
	signup signupUsecaser
	login  loginUsecaser
	logger *slog.Logger
}

func NewAuthHandler(signup signupUsecaser, login loginUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		signup: signup,
		login:  login,
		logger: logger.With("component", "auth_handler"),
	}
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp"   binding:"required"`
}

type completeSignupRequest struct {
	Email     string  `json:"email"     binding:"required,email"`
	Password  string  `json:"password"  binding:"required,min=6,max=72"`
	Name      string  `json:"name"      binding:"required,max=255"`
	Programme *string `json:"programme" binding:"omitempty,max=100"`
	Branch    *string `json:"branch"    binding:"omitempty,max=100"`
	Year      *int    `json:"year"      binding:"omitempty,min=1,max=10"`
	Semester  *int    `json:"semester"  binding:"omitempty,min=1,max=20"`
	PhoneNo   *string `json:"phoneNo"   binding:"omitempty,max=20"`
}

type signupResponse struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.login.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, loginResponse{ID: user.ID, Email: user.Email, Name: user.Name, Token: token})
}

// POST /api/auth/signup/initiate
func (h *AuthHandler) InitiateSignup(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.signup.Initiate(c.Request.Context(), req.Email)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully to your email", "email": req.Email})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
	case errors.Is(err, domain.ErrDelivery):
		c.JSON(http.StatusInternalServerError, gin.H{"error": errSendOTP})
	default:
		h.logger.ErrorContext(c.Request.Context(), "initiate signup", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errSendOTP})
	}
}

// POST /api/auth/signup/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := h.signup.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "verify otp", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidOTP})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP verified successfully", "email": req.Email})
}

// POST /api/auth/signup/complete
func (h *AuthHandler) CompleteSignup(c *gin.Context) {
	var req completeSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.signup.Complete(c.Request.Context(), usecase.CompleteSignupInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Programme: req.Programme,
		Branch:    req.Branch,
		Year:      req.Year,
		Semester:  req.Semester,
		PhoneNo:   req.PhoneNo,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		case errors.Is(err, domain.ErrAlreadyRegistered):
			c.JSON(http.StatusConflict, gin.H{"error": domain.ErrAlreadyRegistered.Error()})
		default:
			h.logger.ErrorContext(c.Request.Context(), "complete signup", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errCreateAccount})
		}
		return
	}

	c.JSON(http.StatusCreated, signupResponse{
		ID:      user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Message: "Account created successfully",
	})
}

// validationMessage picks the specific reason out of a validation error.
func validationMessage(err error) string {
	for _, specific := range []error{
		domain.ErrInvalidEmailDomain,
		domain.ErrAlreadyRegistered,
		domain.ErrOTPNotVerified,
	} {
		if errors.Is(err, specific) {
			return specific.Error()
		}
	}
	return domain.ErrValidation.Error()
}
