package user

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/manifold-app/backend/services/identity"
	"github.com/manifold-app/backend/services/logging"
	"github.com/manifold-app/backend/session"
)

type Service struct {
	db         *gorm.DB
	identities *identity.Service
	sessions   session.SessionService
	logger     *logging.Service
}

func NewService(db *gorm.DB, identities *identity.Service, sessions session.SessionService, logger *logging.Service) *Service {
	return &Service{
		db:         db,
		identities: identities,
		sessions:   sessions,
		logger:     logger,
	}
}

// Create inserts the user row and attaches the initial login identity. True
// transactional rollback is not assumed: if the identity attach fails, the
// partially created user row is deleted before the error propagates.
func (s *Service) Create(name string, ci identity.ClientIdentity) (*User, error) {
	u := &User{
		ID:   uuid.New(),
		Name: name,
	}

	if err := s.db.Create(u).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.identities.Add(u.ID, ci); err != nil {
		if delErr := s.db.Delete(&User{}, "id = ?", u.ID).Error; delErr != nil && s.logger != nil {
			s.logger.Error("failed to remove partially created user",
				zap.String("user_id", u.ID.String()), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to attach login identity to new user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user created",
			zap.String("user_id", u.ID.String()),
			zap.String("identity_kind", string(ci.Kind())))
	}
	return u, nil
}

// Get returns the user, or nil when no row exists.
func (s *Service) Get(userID uuid.UUID) (*User, error) {
	var u User
	err := s.db.Where("id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	return &u, nil
}

func (s *Service) Exists(userID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.Model(&User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user %s: %w", userID, err)
	}
	return count > 0, nil
}

// Delete removes the user together with its login identities and any
// advisory session rows.
func (s *Service) Delete(userID uuid.UUID) error {
	if err := s.identities.DeleteAll(userID); err != nil {
		return err
	}

	if s.sessions != nil {
		if err := s.sessions.RemoveUserSessions(userID); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove session rows for deleted user",
				zap.String("user_id", userID.String()), zap.Error(err))
		}
	}

	if err := s.db.Delete(&User{}, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}

	if s.logger != nil {
		s.logger.Info("user deleted", zap.String("user_id", userID.String()))
	}
	return nil
}
