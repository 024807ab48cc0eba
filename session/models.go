package session

import (
	"time"

	"github.com/google/uuid"
)

// LoginSession is the advisory audit row persisted per web session. Rows are
// tracked on login and removed best-effort on logout; the signed session
// store remains authoritative.
type LoginSession struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Token     string    `json:"-" gorm:"uniqueIndex;size:255;not null"`
	IPAddress string    `json:"ip_address" gorm:"size:45"`
	UserAgent string    `json:"user_agent" gorm:"size:500"`
	Current   bool      `json:"current" gorm:"-"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (LoginSession) TableName() string {
	return "login_sessions"
}

// SessionService tracks advisory login session rows.
type SessionService interface {
	TrackSession(userID uuid.UUID, token, ipAddress, userAgent string, expiresAt time.Time) error

	UpdateLastUsed(token string) error

	GetUserSessions(userID uuid.UUID, currentToken string) ([]LoginSession, error)

	RemoveSessionByToken(token string) error

	RemoveUserSessions(userID uuid.UUID) error

	CleanupExpiredSessions() error
}
