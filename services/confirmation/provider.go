package confirmation

import (
	"github.com/manifold-app/backend/config"
	"github.com/manifold-app/backend/kv"
	"github.com/manifold-app/backend/services/logging"
	"go.uber.org/fx"
)

func ProvideConfirmationService(cfg *config.Config, store kv.Store, logger *logging.Service) (*Service, error) {
	return NewService(&cfg.Secret, store, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideConfirmationService),
)
