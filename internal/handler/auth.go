package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openmow/mower-fleet/internal/middleware"
	"github.com/openmow/mower-fleet/internal/repository"
	"github.com/openmow/mower-fleet/internal/utils"
)

// AuthHandler bundles dependencies for the account endpoints.  Passwords are
// hashed here, at the edge; the repository only ever receives digests.
type AuthHandler struct {
	Users *repository.UserRepo
}

func NewAuthHandler(u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Users: u}
}

// ----- DTOs -----

// credentialsReq carries the signup/signin body.  The field names mirror the
// established client contract.
type credentialsReq struct {
	Email     string `json:"email"`
	Password  string `json:"pass"`
	FirstName string `json:"fname"`
	Surname   string `json:"sname"`
}

// AddUser creates an account and returns its first session as a cookie.
func (h *AuthHandler) AddUser(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.Surname == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, pass, fname and sname are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	token, expiresAt, err := h.Users.CreateUser(ctx,
		req.Email, req.FirstName, req.Surname, utils.HashPassword(req.Password), clientInfo(c))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	setSessionCookie(c, token, expiresAt)
	return c.JSON(http.StatusCreated, echo.Map{"success": "a new user was created and the session cookie returned"})
}

// SignIn verifies credentials and returns a fresh session cookie.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and pass are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	token, expiresAt, err := h.Users.AuthenticateUser(ctx,
		req.Email, utils.HashPassword(req.Password), clientInfo(c))
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signin failed"})
	}

	setSessionCookie(c, token, expiresAt)
	return c.JSON(http.StatusOK, echo.Map{"success": "authentication successful"})
}

// GetUser returns the account behind the request's session cookie.
func (h *AuthHandler) GetUser(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":    user.ID,
		"email": user.Email,
		"fname": user.FirstName,
		"sname": user.Surname,
	})
}

func setSessionCookie(c echo.Context, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     "session",
		Value:    token,
		Expires:  expiresAt,
		Path:     "/",
		HttpOnly: true,
	})
}

// clientInfo describes the signing-in client for the sessions table.
func clientInfo(c echo.Context) string {
	if ua := c.Request().UserAgent(); ua != "" {
		return ua
	}
	return "API Client"
}
