package password

import (
	"github.com/manifold-app/backend/config"
	"github.com/manifold-app/backend/services/logging"
	"go.uber.org/fx"
)

func ProvidePasswordService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	if cfg.Auth.Pepper == "" {
		return nil, ErrPepperMissing
	}
	return NewService(&cfg.Auth, logger), nil
}

var Module = fx.Options(
	fx.Provide(ProvidePasswordService),
)
