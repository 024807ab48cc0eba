package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"
	"gorm.io/gorm"
)

type sessionService struct {
	db *gorm.DB
}

func NewSessionService(db *gorm.DB) SessionService {
	return &sessionService{db: db}
}

func (s *sessionService) TrackSession(userID uuid.UUID, token, ipAddress, userAgent string, expiresAt time.Time) error {
	row := LoginSession{
		UserID:    userID,
		Token:     token,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: time.Now(),
		LastUsed:  time.Now(),
		ExpiresAt: expiresAt,
	}

	return s.db.Create(&row).Error
}

func (s *sessionService) UpdateLastUsed(token string) error {
	return s.db.Model(&LoginSession{}).
		Where("token = ?", token).
		Update("last_used", time.Now()).Error
}

func (s *sessionService) GetUserSessions(userID uuid.UUID, currentToken string) ([]LoginSession, error) {
	var sessions []LoginSession

	err := s.db.Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Order("last_used DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	for i := range sessions {
		if sessions[i].Token == currentToken {
			sessions[i].Current = true
		}
	}

	return sessions, nil
}

func (s *sessionService) RemoveSessionByToken(token string) error {
	return s.db.Where("token = ?", token).Delete(&LoginSession{}).Error
}

func (s *sessionService) RemoveUserSessions(userID uuid.UUID) error {
	return s.db.Where("user_id = ?", userID).Delete(&LoginSession{}).Error
}

func (s *sessionService) CleanupExpiredSessions() error {
	return s.db.Where("expires_at < ?", time.Now()).Delete(&LoginSession{}).Error
}

// GetBrowserInfo renders a short browser label from a raw user agent string
// for session listings.
func GetBrowserInfo(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Browser"
	}

	ua := useragent.Parse(userAgentString)

	if ua.Name != "" {
		if ua.Version != "" {
			return ua.Name + " " + ua.Version
		}
		return ua.Name
	}

	return "Unknown Browser"
}

// GetDeviceType classifies a user agent for session listings.
func GetDeviceType(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown"
	}

	ua := useragent.Parse(userAgentString)
	switch {
	case ua.Mobile:
		return "Mobile"
	case ua.Tablet:
		return "Tablet"
	case ua.Bot:
		return "Bot"
	default:
		return "Desktop"
	}
}
