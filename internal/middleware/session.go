package middleware // reusable HTTP middleware for the fleet API

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openmow/mower-fleet/internal/model"
	"github.com/openmow/mower-fleet/internal/repository"
)

// userContextKey is where SessionAuth stores the authenticated user on the
// echo context.
const userContextKey = "user"

// SessionAuth returns middleware that resolves the `session` cookie to a
// user via the session store.  Requests without a cookie, with an unknown
// token, or with an expired session are rejected with 401.  Handlers behind
// this middleware read the user with CurrentUser.
func SessionAuth(users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie("session")
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session cookie required"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			user, err := users.AuthenticateSession(ctx, cookie.Value)
			if err != nil {
				if errors.Is(err, repository.ErrInvalidSession) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired session"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session lookup failed"})
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by SessionAuth, or false when the
// route was not authenticated.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userContextKey).(model.User)
	return u, ok
}
