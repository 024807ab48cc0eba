package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manifold-app/backend/testutils"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	cfg := testutils.GetTestConfig()
	manager, err := ProvideSessionManager(cfg, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, manager)

	return manager
}

func loadSession(t *testing.T, manager *Manager) context.Context {
	t.Helper()

	ctx, err := manager.Load(context.Background(), "")
	require.NoError(t, err)
	return ctx
}

func TestManager_CreateForUser(t *testing.T) {
	manager := newTestManager(t)
	ctx := loadSession(t, manager)
	userID := uuid.New()

	err := manager.CreateForUser(ctx, userID, "user@example.com")
	require.NoError(t, err)

	boundID, ok := manager.UserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, userID, boundID)
	assert.Equal(t, "user@example.com", manager.Identity(ctx))
}

func TestManager_UserID(t *testing.T) {
	manager := newTestManager(t)

	t.Run("empty session has no user", func(t *testing.T) {
		ctx := loadSession(t, manager)

		_, ok := manager.UserID(ctx)
		assert.False(t, ok)
	})

	t.Run("garbage user id is treated as absent", func(t *testing.T) {
		ctx := loadSession(t, manager)
		manager.Put(ctx, UserIDKey, "not-a-uuid")

		_, ok := manager.UserID(ctx)
		assert.False(t, ok)
	})
}

func TestManager_Purge(t *testing.T) {
	manager := newTestManager(t)
	ctx := loadSession(t, manager)
	userID := uuid.New()

	require.NoError(t, manager.CreateForUser(ctx, userID, "user@example.com"))
	require.NoError(t, manager.Purge(ctx))

	_, ok := manager.UserID(ctx)
	assert.False(t, ok)
	assert.Empty(t, manager.Identity(ctx))
}

func TestProvideSessionManager_Disabled(t *testing.T) {
	cfg := testutils.GetTestConfig()
	cfg.Session.Enabled = false

	manager, err := ProvideSessionManager(cfg, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, manager)
}
