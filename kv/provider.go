package kv

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/manifold-app/backend/config"
	"github.com/manifold-app/backend/services/logging"
)

func ProvideStore(cfg *config.Config, logger *logging.Service) (Store, error) {
	switch cfg.KeyValue.Driver {
	case "redis":
		if logger != nil {
			logger.Info("initializing redis key-value store",
				zap.String("addr", cfg.KeyValue.Addr),
				zap.Int("db", cfg.KeyValue.DB))
		}
		return NewRedisStore(&cfg.KeyValue), nil
	case "memory":
		if logger != nil {
			logger.Info("initializing in-memory key-value store")
		}
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported key-value driver: %s (supported: redis, memory)", cfg.KeyValue.Driver)
	}
}

func SetupStoreLifecycle(lc fx.Lifecycle, store Store) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})
}

var Module = fx.Options(
	fx.Provide(ProvideStore),
	fx.Invoke(SetupStoreLifecycle),
)
