package password

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"

	"github.com/manifold-app/backend/config"
	"github.com/manifold-app/backend/services/logging"
)

var (
	// ErrPepperMissing signals a configuration failure, never a mismatch.
	ErrPepperMissing = errors.New("password pepper is not configured")
	ErrInvalidHash   = errors.New("invalid password hash encoding")
)

// Service derives argon2id hashes of peppered passwords. The pepper is applied
// by HMAC-SHA256 pre-keying of the password before the KDF, since argon2
// itself takes no secret-key input. The per-credential salt is embedded in the
// PHC-encoded hash and also returned separately for the credential's salt
// column.
type Service struct {
	config *config.AuthConfig
	logger *logging.Service
}

func NewService(cfg *config.AuthConfig, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		logger: logger,
	}
}

// Hash returns the PHC-encoded hash and the hex-encoded salt used.
func (s *Service) Hash(password string) (string, string, error) {
	if s.config.Pepper == "" {
		return "", "", ErrPepperMissing
	}

	salt := make([]byte, s.config.ArgonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", "", fmt.Errorf("failed to generate password salt: %w", err)
	}

	hash := argon2.IDKey(s.pepperedPassword(password), salt,
		s.config.ArgonIterations, s.config.ArgonMemory, s.config.ArgonParallelism, s.config.ArgonKeyLength)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		s.config.ArgonMemory,
		s.config.ArgonIterations,
		s.config.ArgonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	if s.logger != nil {
		s.logger.Debug("password hash generated",
			zap.Uint32("memory_kib", s.config.ArgonMemory),
			zap.Uint32("iterations", s.config.ArgonIterations))
	}

	return encoded, hex.EncodeToString(salt), nil
}

// Verify recomputes the hash with the parameters and salt embedded in the
// encoded string and compares in constant time. A mismatch is (false, nil); a
// malformed hash or missing pepper is an error.
func (s *Service) Verify(encodedHash, password string) (bool, error) {
	if s.config.Pepper == "" {
		return false, ErrPepperMissing
	}

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, ErrInvalidHash
	}

	var memory, iterations uint32
	var parallelism uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, ErrInvalidHash
	}
	if parallelism == 0 || parallelism > 255 {
		return false, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrInvalidHash
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, ErrInvalidHash
	}
	if len(expected) == 0 || len(expected) > 1<<10 {
		return false, ErrInvalidHash
	}

	computed := argon2.IDKey(s.pepperedPassword(password), salt,
		iterations, memory, uint8(parallelism), uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

func (s *Service) pepperedPassword(password string) []byte {
	mac := hmac.New(sha256.New, []byte(s.config.Pepper))
	mac.Write([]byte(password))
	return mac.Sum(nil)
}
