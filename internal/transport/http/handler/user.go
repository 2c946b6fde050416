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

type userUsecaser interface {
	GetProfile(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate, image *usecase.Upload) (*domain.User, error)
	ProfileImage(ctx context.Context, id int64) ([]byte, error)
}

type accountUsecaser interface {
	DeleteUser(ctx context.Context, userID int64) (bool, error)
}

type UserHandler struct {
	users    userUsecaser
	accounts accountUsecaser
	logger   *slog.Logger
}

func NewUserHandler(users userUsecaser, accounts accountUsecaser, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, accounts: accounts, logger: logger.With("component", "user_handler")}
}

type userResponse struct {
	ID              int64   `json:"id"`
	Email           string  `json:"email"`
	Name            string  `json:"name"`
	Programme       *string `json:"programme"`
	Branch          *string `json:"branch"`
	Year            *int    `json:"year"`
	Semester        *int    `json:"semester"`
	PhoneNo         *string `json:"phoneNo"`
	HasProfileImage bool    `json:"hasProfileImage"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Programme:       u.Programme,
		Branch:          u.Branch,
		Year:            u.Year,
		Semester:        u.Semester,
		PhoneNo:         u.PhoneNo,
		HasProfileImage: u.HasProfileImage(),
	}
}

// updateProfileRequest is sent as multipart/form-data with an optional
// "profileImage" file part.
type updateProfileRequest struct {
	Name      string  `form:"name"      binding:"required,max=255"`
	Programme *string `form:"programme" binding:"omitempty,max=100"`
	Branch    *string `form:"branch"    binding:"omitempty,max=100"`
	Year      *int    `form:"year"      binding:"omitempty,min=1,max=10"`
	Semester  *int    `form:"semester"  binding:"omitempty,min=1,max=20"`
	PhoneNo   *string `form:"phoneNo"   binding:"omitempty,max=20"`
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.users.GetProfile(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// GET /api/users/:id/profile-image
func (h *UserHandler) ProfileImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	data, err := h.users.ProfileImage(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get profile image", err)
		return
	}
	writeImage(c, data)
}

// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if id != currentUser(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": errForbidden})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	image, err := formImage(c, "profileImage")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidImage})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), id, domain.ProfileUpdate{
		Name:      req.Name,
		Programme: req.Programme,
		Branch:    req.Branch,
		Year:      req.Year,
		Semester:  req.Semester,
		PhoneNo:   req.PhoneNo,
	}, image)
	if err != nil {
		h.fail(c, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// DELETE /api/users/:id
// Removes the account, every product it sells and all their images.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if id != currentUser(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": errForbidden})
		return
	}

	deleted, err := h.accounts.DeleteUser(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "delete user", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
	case errors.Is(err, domain.ErrBlobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errImageNotFound})
	default:
		h.logger.ErrorContext(c.Request.Context(), op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
