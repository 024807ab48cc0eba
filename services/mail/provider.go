package mail

import (
	"go.uber.org/fx"

	"github.com/manifold-app/backend/config"
	"github.com/manifold-app/backend/services/logging"
)

func ProvideMailService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	return NewService(&cfg.Mail, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideMailService),
)
