package session

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	sessionManagerKey = "session_manager"
	sessionServiceKey = "session_service"
)

func Middleware(manager *Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if manager == nil {
				return next(c)
			}

			c.Set(sessionManagerKey, manager)

			var handlerErr error

			rw := &responseWriterWrapper{
				ResponseWriter: c.Response().Writer,
				echo:           c.Response(),
			}

			handler := manager.SessionManager.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := context.WithValue(r.Context(), sessionManagerKey, manager)
				c.SetRequest(r.WithContext(ctx))
				c.Response().Writer = w
				handlerErr = next(c)
			}))

			handler.ServeHTTP(rw, c.Request())
			return handlerErr
		}
	}
}

// responseWriterWrapper wraps Echo's response writer to work with SCS
type responseWriterWrapper struct {
	http.ResponseWriter
	echo *echo.Response
}

func (w *responseWriterWrapper) Header() http.Header {
	return w.ResponseWriter.Header()
}

func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	return w.ResponseWriter.Write(b)
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if w.echo.Status == 0 {
		w.echo.Status = statusCode
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func GetManager(c echo.Context) *Manager {
	if manager := c.Get(sessionManagerKey); manager != nil {
		return manager.(*Manager)
	}
	return nil
}

func GetManagerFromContext(ctx context.Context) *Manager {
	if manager := ctx.Value(sessionManagerKey); manager != nil {
		return manager.(*Manager)
	}
	return nil
}

// ServiceMiddleware injects the audit session service into the request
// context for handlers that list or revoke sessions, and touches the audit
// row after each authenticated request so listings order by recency. The
// touch is best-effort; the row is advisory.
func ServiceMiddleware(service SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if service != nil {
				c.Set(sessionServiceKey, service)
			}

			err := next(c)

			if service != nil && IsAuthenticated(c) {
				if manager := GetManager(c); manager != nil {
					if token := manager.Token(c.Request().Context()); token != "" {
						_ = service.UpdateLastUsed(token)
					}
				}
			}

			return err
		}
	}
}

func GetSessionService(c echo.Context) SessionService {
	if service, ok := c.Get(sessionServiceKey).(SessionService); ok {
		return service
	}
	return nil
}
