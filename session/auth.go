package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Login binds the user to a freshly rotated session and tracks an advisory
// audit row when a session service is available. Audit failures are ignored;
// the signed session is authoritative.
func Login(c echo.Context, userID uuid.UUID, identity string) error {
	manager := GetManager(c)
	if manager == nil {
		return nil
	}
	ctx := c.Request().Context()

	if err := manager.CreateForUser(ctx, userID, identity); err != nil {
		return err
	}

	if service := GetSessionService(c); service != nil {
		token := manager.Token(ctx)
		if token != "" {
			expiresAt := time.Now().Add(manager.config.MaxAge)
			_ = service.TrackSession(userID, token, c.RealIP(), c.Request().UserAgent(), expiresAt)
		}
	}

	return nil
}

// Logout purges the client session and best-effort removes the audit row.
func Logout(c echo.Context) {
	manager := GetManager(c)
	if manager == nil {
		return
	}
	ctx := c.Request().Context()

	if service := GetSessionService(c); service != nil {
		if token := manager.Token(ctx); token != "" {
			_ = service.RemoveSessionByToken(token)
		}
	}

	_ = manager.Purge(ctx)
}

func GetUserID(c echo.Context) (uuid.UUID, bool) {
	manager := GetManager(c)
	if manager == nil {
		return uuid.Nil, false
	}
	return manager.UserID(c.Request().Context())
}

func GetIdentity(c echo.Context) string {
	manager := GetManager(c)
	if manager == nil {
		return ""
	}
	return manager.Identity(c.Request().Context())
}

func IsAuthenticated(c echo.Context) bool {
	_, ok := GetUserID(c)
	return ok
}

func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAuthenticated(c) {
				return echo.NewHTTPError(401, "Authentication required")
			}
			return next(c)
		}
	}
}
