package confirmation

import (
	"context"
	"testing"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manifold-app/backend/config"
	"github.com/manifold-app/backend/kv"
	"github.com/manifold-app/backend/testutils"
)

func newTestService(t *testing.T, mutate ...func(*config.SecretConfig)) (*Service, *kv.MemoryStore) {
	t.Helper()

	cfg := testutils.GetTestConfig()
	for _, fn := range mutate {
		fn(&cfg.Secret)
	}

	store := kv.NewMemoryStore()
	service, err := NewService(&cfg.Secret, store, nil)
	require.NoError(t, err)

	return service, store
}

func TestNewService(t *testing.T) {
	t.Run("rejects short secret key", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		cfg.Secret.SecretKey = "too-short"

		_, err := NewService(&cfg.Secret, kv.NewMemoryStore(), nil)
		assert.ErrorIs(t, err, ErrSecretKeyInvalid)
	})

	t.Run("rejects missing HMAC secret", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		cfg.Secret.HMACSecret = ""

		_, err := NewService(&cfg.Secret, kv.NewMemoryStore(), nil)
		assert.ErrorIs(t, err, ErrHMACSecretMissing)
	})
}

func TestService_IssueAndVerify(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("round-trip returns user id and claims", func(t *testing.T) {
		service, _ := newTestService(t)

		token, ttl, err := service.Issue(ctx, userID, PurposeConfirmation, map[string]string{"li_type": "email"})
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, int64((30 * time.Minute).Seconds()), ttl)

		verified, err := service.Verify(ctx, token, PurposeConfirmation)
		require.NoError(t, err)
		assert.Equal(t, userID, verified.UserID)
		assert.Equal(t, "email", verified.Claims["li_type"])
		assert.Equal(t, userID.String(), verified.Claims["user_id"])
	})

	t.Run("second verification fails even though the seal is still valid", func(t *testing.T) {
		service, _ := newTestService(t)

		token, _, err := service.Issue(ctx, userID, PurposeConfirmation, map[string]string{"li_type": "email"})
		require.NoError(t, err)

		_, err = service.Verify(ctx, token, PurposeConfirmation)
		require.NoError(t, err)

		_, err = service.Verify(ctx, token, PurposeConfirmation)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("cross-purpose verification fails both ways", func(t *testing.T) {
		service, _ := newTestService(t)

		confirmToken, _, err := service.Issue(ctx, userID, PurposeConfirmation, nil)
		require.NoError(t, err)
		pwdToken, _, err := service.Issue(ctx, userID, PurposePasswordChange, nil)
		require.NoError(t, err)

		_, err = service.Verify(ctx, confirmToken, PurposePasswordChange)
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = service.Verify(ctx, pwdToken, PurposeConfirmation)
		assert.ErrorIs(t, err, ErrInvalidToken)

		// and both still verify under their own purpose
		_, err = service.Verify(ctx, confirmToken, PurposeConfirmation)
		require.NoError(t, err)
		_, err = service.Verify(ctx, pwdToken, PurposePasswordChange)
		require.NoError(t, err)
	})

	t.Run("garbage and tampered tokens are rejected", func(t *testing.T) {
		service, _ := newTestService(t)

		_, err := service.Verify(ctx, "not-a-token", PurposeConfirmation)
		assert.ErrorIs(t, err, ErrInvalidToken)

		token, _, err := service.Issue(ctx, userID, PurposeConfirmation, nil)
		require.NoError(t, err)

		tampered := token[:len(token)-4] + "AAAA"
		_, err = service.Verify(ctx, tampered, PurposeConfirmation)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token sealed under different secrets is rejected", func(t *testing.T) {
		service, _ := newTestService(t)
		otherKey, _ := newTestService(t, func(sc *config.SecretConfig) {
			sc.SecretKey = "fedcba9876543210fedcba9876543210"
		})
		otherHMAC, _ := newTestService(t, func(sc *config.SecretConfig) {
			sc.HMACSecret = "a-different-hmac-secret"
		})

		token, _, err := service.Issue(ctx, userID, PurposeConfirmation, nil)
		require.NoError(t, err)

		_, err = otherKey.Verify(ctx, token, PurposeConfirmation)
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = otherHMAC.Verify(ctx, token, PurposeConfirmation)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token past its TTL is rejected", func(t *testing.T) {
		service, _ := newTestService(t, func(sc *config.SecretConfig) {
			sc.TokenExpiration = 30 * time.Millisecond
		})

		token, _, err := service.Issue(ctx, userID, PurposeConfirmation, nil)
		require.NoError(t, err)

		time.Sleep(60 * time.Millisecond)

		// both the embedded expiration claim and the store TTL have lapsed;
		// either alone is sufficient to reject
		_, err = service.Verify(ctx, token, PurposeConfirmation)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired claim alone is sufficient to reject", func(t *testing.T) {
		service, store := newTestService(t, func(sc *config.SecretConfig) {
			sc.TokenExpiration = 30 * time.Millisecond
		})

		token, _, err := service.Issue(ctx, userID, PurposeConfirmation, nil)
		require.NoError(t, err)

		time.Sleep(60 * time.Millisecond)

		// re-arm the single-use marker so only the embedded expiration
		// claim stands between the token and acceptance
		parsed, err := paseto.NewParserWithoutExpiryCheck().
			ParseV4Local(service.key, token, []byte(service.secrets.HMACSecret))
		require.NoError(t, err)
		sessionKey, err := parsed.GetString("session_key")
		require.NoError(t, err)
		require.NoError(t, store.Set(ctx, service.storeKey(PurposeConfirmation, sessionKey), "", time.Minute))

		_, err = service.Verify(ctx, token, PurposeConfirmation)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing marker alone is sufficient to reject", func(t *testing.T) {
		service, store := newTestService(t)

		token, _, err := service.Issue(ctx, userID, PurposePasswordChange, nil)
		require.NoError(t, err)

		verified, err := service.Verify(ctx, token, PurposePasswordChange)
		require.NoError(t, err)

		// the cryptographic envelope is untouched; only the marker is gone
		sessionKey := verified.Claims["session_key"].(string)
		assert.NotEmpty(t, sessionKey)
		_, found, err := store.Get(ctx, service.storeKey(PurposePasswordChange, sessionKey))
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestService_SessionKeyEntropy(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	token, _, err := service.Issue(ctx, uuid.New(), PurposeConfirmation, nil)
	require.NoError(t, err)

	verified, err := service.Verify(ctx, token, PurposeConfirmation)
	require.NoError(t, err)

	sessionKey, ok := verified.Claims["session_key"].(string)
	require.True(t, ok)
	// 128 random bytes, hex-encoded
	assert.Equal(t, 256, len(sessionKey))
	_ = store
}

func TestService_TTLPerPurpose(t *testing.T) {
	service, _ := newTestService(t)

	assert.Equal(t, 30*time.Minute, service.TTL(PurposeConfirmation))
	assert.Equal(t, time.Hour, service.TTL(PurposePasswordChange))
}
