package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/campus-marketplace/internal/domain"
	"github.com/ErlanBelekov/campus-marketplace/internal/transport/http/handler"
	"github.com/ErlanBelekov/campus-marketplace/internal/usecase"
)

type fakeUsers struct {
	getProfile    func(ctx context.Context, id int64) (*domain.User, error)
	updateProfile func(ctx context.Context, id int64, update domain.ProfileUpdate, image *usecase.Upload) (*domain.User, error)
	profileImage  func(ctx context.Context, id int64) ([]byte, error)
}

func (f *fakeUsers) GetProfile(ctx context.Context, id int64) (*domain.User, error) {
	return f.getProfile(ctx, id)
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate, image *usecase.Upload) (*domain.User, error) {
	return f.updateProfile(ctx, id, update, image)
}

func (f *fakeUsers) ProfileImage(ctx context.Context, id int64) ([]byte, error) {
	return f.profileImage(ctx, id)
}

type fakeAccounts struct {
	deleteUser func(ctx context.Context, id int64) (bool, error)
}

func (f *fakeAccounts) DeleteUser(ctx context.Context, id int64) (bool, error) {
	return f.deleteUser(ctx, id)
}

func newUserEngine(u *fakeUsers, a *fakeAccounts, userID int64) *gin.Engine {
	h := handler.NewUserHandler(u, a, testLogger)
	r := gin.New()
	r.GET("/api/users/:id", h.Get)
	r.GET("/api/users/:id/profile-image", h.ProfileImage)
	r.PUT("/api/users/:id", as(userID), h.Update)
	r.DELETE("/api/users/:id", as(userID), h.Delete)
	return r
}

func TestGetUser(t *testing.T) {
	u := &fakeUsers{getProfile: func(_ context.Context, id int64) (*domain.User, error) {
		if id != 1 {
			return nil, domain.ErrUserNotFound
		}
		return &domain.User{ID: 1, Email: "a@am.students.amrita.edu", Name: "Asha"}, nil
	}}
	r := newUserEngine(u, &fakeAccounts{}, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/1", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/2", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpdateProfile_OtherUser_Returns403(t *testing.T) {
	body, ct := multipartBody(t, map[string]string{"name": "x"}, "", "", nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/users/2", body)
	req.Header.Set("Content-Type", ct)
	newUserEngine(&fakeUsers{}, &fakeAccounts{}, 1).ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestUpdateProfile_WithImage(t *testing.T) {
	var gotUpdate domain.ProfileUpdate
	var gotImage *usecase.Upload
	u := &fakeUsers{updateProfile: func(_ context.Context, id int64, up domain.ProfileUpdate, img *usecase.Upload) (*domain.User, error) {
		gotUpdate, gotImage = up, img
		return &domain.User{ID: id, Name: up.Name, Year: up.Year}, nil
	}}

	body, ct := multipartBody(t, map[string]string{"name": "Asha", "year": "3", "branch": "CSE"},
		"profileImage", "me.jpg", []byte("jpeg"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/users/1", body)
	req.Header.Set("Content-Type", ct)
	newUserEngine(u, &fakeAccounts{}, 1).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if gotUpdate.Name != "Asha" || gotUpdate.Year == nil || *gotUpdate.Year != 3 || gotUpdate.Branch == nil || *gotUpdate.Branch != "CSE" {
		t.Errorf("unexpected update %+v", gotUpdate)
	}
	if gotImage == nil || string(gotImage.Data) != "jpeg" {
		t.Errorf("image not passed through: %+v", gotImage)
	}
}

func TestDeleteUser(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		deleted  bool
		err      error
		wantCode int
	}{
		{"self", "/api/users/1", true, nil, http.StatusNoContent},
		{"someone else", "/api/users/2", false, nil, http.StatusForbidden},
		{"already gone", "/api/users/1", false, nil, http.StatusNotFound},
		{"failure", "/api/users/1", false, errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := &fakeAccounts{deleteUser: func(context.Context, int64) (bool, error) { return tc.deleted, tc.err }}
			w := httptest.NewRecorder()
			newUserEngine(&fakeUsers{}, a, 1).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, tc.path, nil))
			if w.Code != tc.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tc.wantCode)
			}
		})
	}
}

func TestProfileImage_None_Returns404(t *testing.T) {
	u := &fakeUsers{profileImage: func(context.Context, int64) ([]byte, error) {
		return nil, errors.Join(domain.ErrNotFound, domain.ErrBlobNotFound)
	}}
	w := httptest.NewRecorder()
	newUserEngine(u, &fakeAccounts{}, 0).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/1/profile-image", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
