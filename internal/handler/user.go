package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sproutie/sproutie-server/internal/middleware"
	"github.com/sproutie/sproutie-server/internal/model"
	"github.com/sproutie/sproutie-server/internal/repository"
)

// UserStore is the persistence surface the user handlers need.
// *repository.UserRepo implements it.
type UserStore interface {
	Create(ctx context.Context, subjectID, email, displayName string, emailVerified bool) (uint64, error)
	GetBySubject(ctx context.Context, subjectID string) (model.User, error)
	UpdateProfile(ctx context.Context, subjectID string, displayName *string, emailVerified *bool) error
}

// UserHandler implements user registration and profile endpoints.
type UserHandler struct {
	Users UserStore
}

func NewUserHandler(u UserStore) *UserHandler { return &UserHandler{Users: u} }

type createUserReq struct {
	SubjectID     string `json:"subject_id"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	EmailVerified bool   `json:"email_verified"`
}

type updateUserReq struct {
	DisplayName   *string `json:"display_name"`
	EmailVerified *bool   `json:"email_verified"`
}

// userResp is the public-safe projection of a user record.
type userResp struct {
	SubjectID     string    `json:"subject_id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"display_name,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		SubjectID:     u.SubjectID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

// Create handles POST /api/v1/users. The mobile client calls it once
// the identity provider finishes registration, handing over the new
// subject id and profile basics.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.SubjectID = strings.TrimSpace(req.SubjectID)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.SubjectID == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject_id and email are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.SubjectID, req.Email, req.DisplayName, req.EmailVerified); err != nil {
		if err == repository.ErrUserExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	u, err := h.Users.GetBySubject(ctx, req.SubjectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusCreated, toUserResp(u))
}

// Get handles GET /api/v1/users/:uid and returns the active profile for
// an identity-provider subject id.
func (h *UserHandler) Get(c echo.Context) error {
	uid := c.Param("uid")
	if uid == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetBySubject(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Update handles PATCH /api/v1/users/me. Only the authenticated caller
// can change their own profile; omitted fields stay unchanged.
func (h *UserHandler) Update(c echo.Context) error {
	sub, ok := middleware.Subject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.DisplayName == nil && req.EmailVerified == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, sub, req.DisplayName, req.EmailVerified); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	u, err := h.Users.GetBySubject(ctx, sub)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}
