package identity

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/manifold-app/backend/services/logging"
	"github.com/manifold-app/backend/services/password"
)

var ErrUnsupportedKind = errors.New("unsupported login identity kind")

type Service struct {
	db     *gorm.DB
	hasher *password.Service
	logger *logging.Service
}

func NewService(db *gorm.DB, hasher *password.Service, logger *logging.Service) *Service {
	return &Service{
		db:     db,
		hasher: hasher,
		logger: logger,
	}
}

// Find returns the identity of the given kind for a user, or nil when the
// user has none.
func (s *Service) Find(userID uuid.UUID, kind Kind) (*LoginIdentity, error) {
	if !kind.Valid() {
		return nil, ErrUnsupportedKind
	}

	var li LoginIdentity
	err := s.db.Where("user_id = ? AND kind = ?", userID, kind).First(&li).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load login identity for user %s: %w", userID, err)
	}

	return &li, nil
}

// FindByIdentifier resolves an identity row by its identifying attribute,
// or nil when no row matches.
func (s *Service) FindByIdentifier(kind Kind, identifier string) (*LoginIdentity, error) {
	if !kind.Valid() {
		return nil, ErrUnsupportedKind
	}

	var li LoginIdentity
	err := s.db.Where("kind = ? AND identifier = ?", kind, identifier).First(&li).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up login identity %q: %w", identifier, err)
	}

	return &li, nil
}

// UserIDFor resolves the owning user of a submitted client identity, without
// checking its secret.
func (s *Service) UserIDFor(ci ClientIdentity) (uuid.UUID, bool, error) {
	li, err := s.FindByIdentifier(ci.Kind(), ci.Identifier())
	if err != nil {
		return uuid.Nil, false, err
	}
	if li == nil {
		return uuid.Nil, false, nil
	}
	return li.UserID, true, nil
}

// All returns every identity a user has registered, across all kinds.
func (s *Service) All(userID uuid.UUID) ([]LoginIdentity, error) {
	var identities []LoginIdentity
	if err := s.db.Where("user_id = ?", userID).Find(&identities).Error; err != nil {
		return nil, fmt.Errorf("failed to load login identities for user %s: %w", userID, err)
	}
	return identities, nil
}

// Add hashes the client identity's secret and persists the credential.
func (s *Service) Add(userID uuid.UUID, ci ClientIdentity) error {
	switch ci.Kind() {
	case KindEmail:
		hash, salt, err := s.hasher.Hash(ci.Secret())
		if err != nil {
			return fmt.Errorf("failed to hash password for new login identity: %w", err)
		}

		li := LoginIdentity{
			UserID:       userID,
			Kind:         KindEmail,
			Identifier:   ci.Identifier(),
			PasswordHash: hash,
			Salt:         salt,
		}

		if err := s.db.Create(&li).Error; err != nil {
			return fmt.Errorf("failed to create login identity: %w", err)
		}
	default:
		return ErrUnsupportedKind
	}

	if s.logger != nil {
		s.logger.Info("login identity added",
			zap.String("user_id", userID.String()),
			zap.String("kind", string(ci.Kind())))
	}
	return nil
}

// UpdatePassword rewrites the credential's hash and salt.
func (s *Service) UpdatePassword(userID uuid.UUID, kind Kind, newPassword string) error {
	if !kind.Valid() {
		return ErrUnsupportedKind
	}

	hash, salt, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash replacement password: %w", err)
	}

	err = s.db.Model(&LoginIdentity{}).
		Where("user_id = ? AND kind = ?", userID, kind).
		Updates(map[string]any{"password_hash": hash, "salt": salt}).Error
	if err != nil {
		return fmt.Errorf("failed to update password for user %s: %w", userID, err)
	}

	if s.logger != nil {
		s.logger.Info("login identity password updated", zap.String("user_id", userID.String()))
	}
	return nil
}

// MarkVerified flips the verified flag after a successful confirmation.
func (s *Service) MarkVerified(userID uuid.UUID, kind Kind) error {
	if !kind.Valid() {
		return ErrUnsupportedKind
	}

	err := s.db.Model(&LoginIdentity{}).
		Where("user_id = ? AND kind = ?", userID, kind).
		Update("verified", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark login identity verified for user %s: %w", userID, err)
	}

	if s.logger != nil {
		s.logger.Info("login identity verified",
			zap.String("user_id", userID.String()),
			zap.String("kind", string(kind)))
	}
	return nil
}

func (s *Service) Delete(userID uuid.UUID, kind Kind) error {
	if !kind.Valid() {
		return ErrUnsupportedKind
	}

	err := s.db.Where("user_id = ? AND kind = ?", userID, kind).Delete(&LoginIdentity{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete login identity for user %s: %w", userID, err)
	}
	return nil
}

func (s *Service) DeleteAll(userID uuid.UUID) error {
	err := s.db.Where("user_id = ?", userID).Delete(&LoginIdentity{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete login identities for user %s: %w", userID, err)
	}
	return nil
}
