package confirmation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/manifold-app/backend/config"
	"github.com/manifold-app/backend/kv"
	"github.com/manifold-app/backend/services/logging"
)

var (
	// ErrInvalidToken covers malformed, unauthenticated, expired and
	// already-consumed tokens alike; callers must not learn which.
	ErrInvalidToken = errors.New("invalid or expired confirmation token")

	ErrSecretKeyInvalid  = errors.New("confirmation secret key must be exactly 32 bytes")
	ErrHMACSecretMissing = errors.New("confirmation HMAC secret is not configured")
)

// Purpose selects the store-key namespace and TTL of a token. The set is
// closed; a new purpose means a new prefix and default TTL, nothing else.
type Purpose string

const (
	PurposeConfirmation   Purpose = "confirmation"
	PurposePasswordChange Purpose = "password_change"
)

const passwordChangeKeyPrefix = "PWD_CHG"

// nonceLength is the entropy of the single-use session key in bytes.
const nonceLength = 128

const (
	claimUserID     = "user_id"
	claimSessionKey = "session_key"
)

// Token is the verified claims bundle handed back to callers.
type Token struct {
	UserID uuid.UUID
	Claims map[string]any
}

// Service issues and verifies sealed single-use confirmation tokens. Claims
// are encrypted and authenticated with the symmetric key, with the HMAC
// secret bound in as an implicit assertion: both secrets are required to
// decrypt or forge a token. Single use is enforced by a marker in the
// key-value store; this service is the sole authority on whether a token has
// been consumed.
type Service struct {
	secrets *config.SecretConfig
	store   kv.Store
	logger  *logging.Service
	key     paseto.V4SymmetricKey
}

func NewService(secrets *config.SecretConfig, store kv.Store, logger *logging.Service) (*Service, error) {
	if len(secrets.SecretKey) != 32 {
		return nil, ErrSecretKeyInvalid
	}
	if secrets.HMACSecret == "" {
		return nil, ErrHMACSecretMissing
	}

	key, err := paseto.V4SymmetricKeyFromBytes([]byte(secrets.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to build symmetric token key: %w", err)
	}

	return &Service{
		secrets: secrets,
		store:   store,
		logger:  logger,
		key:     key,
	}, nil
}

// Issue seals a token for userID and writes its single-use marker. It returns
// the token string and the TTL in seconds, so callers can render "expires in
// N minutes" messages.
func (s *Service) Issue(ctx context.Context, userID uuid.UUID, purpose Purpose, extraClaims map[string]string) (string, int64, error) {
	nonce := make([]byte, nonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return "", 0, fmt.Errorf("failed to generate token session key: %w", err)
	}
	sessionKey := hex.EncodeToString(nonce)

	storeKey := s.storeKey(purpose, sessionKey)
	ttl := s.ttl(purpose)

	// The marker's presence is the single-use gate; its value is irrelevant.
	if err := s.store.Set(ctx, storeKey, "", ttl); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to write confirmation token marker",
				zap.String("purpose", string(purpose)), zap.Error(err))
		}
		return "", 0, fmt.Errorf("failed to write single-use marker: %w", err)
	}

	now := time.Now()
	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(ttl))

	if err := token.Set(claimUserID, userID.String()); err != nil {
		return "", 0, fmt.Errorf("failed to set user id claim: %w", err)
	}
	if err := token.Set(claimSessionKey, sessionKey); err != nil {
		return "", 0, fmt.Errorf("failed to set session key claim: %w", err)
	}
	for claim, value := range extraClaims {
		if err := token.Set(claim, value); err != nil {
			return "", 0, fmt.Errorf("failed to set claim %q: %w", claim, err)
		}
	}

	sealed := token.V4Encrypt(s.key, []byte(s.secrets.HMACSecret))

	if s.logger != nil {
		s.logger.Info("confirmation token issued",
			zap.String("user_id", userID.String()),
			zap.String("purpose", string(purpose)),
			zap.Duration("ttl", ttl))
	}

	return sealed, int64(ttl.Seconds()), nil
}

// Verify opens the sealed token, redeems its single-use marker and returns
// the recovered user id together with the full claims map. All rejection
// causes collapse to ErrInvalidToken; only store and decode infrastructure
// failures surface as distinct errors.
func (s *Service) Verify(ctx context.Context, tokenString string, purpose Purpose) (*Token, error) {
	parser := paseto.NewParser()

	parsed, err := parser.ParseV4Local(s.key, tokenString, []byte(s.secrets.HMACSecret))
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("confirmation token rejected",
				zap.String("purpose", string(purpose)), zap.Error(err))
		}
		return nil, ErrInvalidToken
	}

	userIDClaim, err := parsed.GetString(claimUserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(userIDClaim)
	if err != nil {
		return nil, ErrInvalidToken
	}

	sessionKey, err := parsed.GetString(claimSessionKey)
	if err != nil {
		return nil, ErrInvalidToken
	}

	storeKey := s.storeKey(purpose, sessionKey)

	// Atomic get-and-delete: the marker is gone after the first successful
	// redemption, so a racing duplicate cannot win as well.
	found, err := s.store.GetDel(ctx, storeKey)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to redeem confirmation token marker",
				zap.String("purpose", string(purpose)), zap.Error(err))
		}
		return nil, fmt.Errorf("failed to verify confirmation token for store key %s: %w", storeKey, err)
	}
	if !found {
		// Expired or already consumed; deliberately indistinguishable.
		return nil, ErrInvalidToken
	}

	if s.logger != nil {
		s.logger.Info("confirmation token verified",
			zap.String("user_id", userID.String()),
			zap.String("purpose", string(purpose)))
	}

	return &Token{
		UserID: userID,
		Claims: parsed.Claims(),
	}, nil
}

// TTL reports the validity window configured for a purpose.
func (s *Service) TTL(purpose Purpose) time.Duration {
	return s.ttl(purpose)
}

func (s *Service) ttl(purpose Purpose) time.Duration {
	if purpose == PurposePasswordChange {
		return s.secrets.PasswordChangeExpiration
	}
	return s.secrets.TokenExpiration
}

func (s *Service) storeKey(purpose Purpose, sessionKey string) string {
	if purpose == PurposePasswordChange {
		return fmt.Sprintf("%s_%s_%s", s.secrets.KeyPrefix, passwordChangeKeyPrefix, sessionKey)
	}
	return fmt.Sprintf("%s_%s", s.secrets.KeyPrefix, sessionKey)
}
