package testutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/manifold-app/backend/config"
)

func SetupTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	if len(models) > 0 {
		err = db.AutoMigrate(models...)
		require.NoError(t, err)
	}

	return db
}

func CleanupTestDB(t *testing.T, db *gorm.DB, tables ...string) {
	for _, table := range tables {
		err := db.Exec("DELETE FROM " + table).Error
		require.NoError(t, err)
	}
}

// GetTestConfig returns a config with fixed secrets and argon2 parameters
// light enough to keep the suite fast.
func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:      "manifold test",
			URL:       "http://localhost:8080",
			ClientURL: "http://localhost:3000",
		},
		Session: config.SessionConfig{
			Enabled:  true,
			Store:    "memory",
			Name:     "manifold_session",
			MaxAge:   time.Hour,
			Path:     "/",
			HttpOnly: true,
			SameSite: "lax",
		},
		KeyValue: config.KeyValueConfig{
			Driver: "memory",
		},
		Auth: config.AuthConfig{
			Pepper:           "test-pepper-secret",
			ArgonMemory:      1024,
			ArgonIterations:  2,
			ArgonParallelism: 1,
			ArgonSaltLength:  16,
			ArgonKeyLength:   32,
		},
		Secret: config.SecretConfig{
			SecretKey:                "0123456789abcdef0123456789abcdef",
			HMACSecret:               "test-hmac-secret",
			KeyPrefix:                "MANIFOLD",
			TokenExpiration:          30 * time.Minute,
			PasswordChangeExpiration: time.Hour,
		},
	}
}
