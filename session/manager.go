package session

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"

	"github.com/manifold-app/backend/config"
)

const (
	UserIDKey   = "manifold__user_id"
	IdentityKey = "manifold__identity"
)

// Manager wraps scs with the user-binding operations the login flow needs.
// The signed, server-side stored session is the authoritative record of a
// login; any database mirror is advisory.
type Manager struct {
	*scs.SessionManager
	config config.SessionConfig
}

// CreateForUser rotates the client's session token and binds the user id and
// identity label to the fresh session. Rotation on privilege change prevents
// session fixation.
func (m *Manager) CreateForUser(ctx context.Context, userID uuid.UUID, identity string) error {
	if err := m.RenewToken(ctx); err != nil {
		return fmt.Errorf("failed to rotate session token: %w", err)
	}

	m.Put(ctx, UserIDKey, userID.String())
	m.Put(ctx, IdentityKey, identity)

	return nil
}

// UserID reads the bound user id without checking that the user still
// exists.
func (m *Manager) UserID(ctx context.Context) (uuid.UUID, bool) {
	raw := m.GetString(ctx, UserIDKey)
	if raw == "" {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// Identity reads the bound identity label, if any.
func (m *Manager) Identity(ctx context.Context) string {
	return m.GetString(ctx, IdentityKey)
}

// Purge destroys all session state for the current client context.
func (m *Manager) Purge(ctx context.Context) error {
	return m.Destroy(ctx)
}

func (m *Manager) MaxAge() time.Duration {
	return m.config.MaxAge
}
