package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manifold-app/backend/config"
)

type testModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:255"`
}

func createTestConfig(driver, dsn string, autoMigrate bool) config.Config {
	return config.Config{
		Database: config.DatabaseConfig{
			Driver:      driver,
			DSN:         dsn,
			AutoMigrate: autoMigrate,
		},
	}
}

func TestWithModels(t *testing.T) {
	opt := WithModels(&testModel{}, testModel{})
	require.NotNil(t, opt)
	assert.Len(t, opt.models, 2)
}

func TestProvideDatabase(t *testing.T) {
	t.Run("sqlite with automigrate", func(t *testing.T) {
		cfg := createTestConfig("sqlite", ":memory:", true)

		db, err := ProvideDatabase(cfg, WithModels(&testModel{}), nil)
		require.NoError(t, err)
		require.NotNil(t, db)

		assert.True(t, db.Migrator().HasTable(&testModel{}))
	})

	t.Run("sqlite without automigrate", func(t *testing.T) {
		cfg := createTestConfig("sqlite", ":memory:", false)

		db, err := ProvideDatabase(cfg, WithModels(&testModel{}), nil)
		require.NoError(t, err)

		assert.False(t, db.Migrator().HasTable(&testModel{}))
	})

	t.Run("unsupported driver", func(t *testing.T) {
		cfg := createTestConfig("mongodb", "whatever", false)

		db, err := ProvideDatabase(cfg, nil, nil)
		require.Error(t, err)
		assert.Nil(t, db)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})
}
