package database

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/manifold-app/backend/config"
	"github.com/manifold-app/backend/services/logging"
)

var Module = fx.Options(
	fx.Provide(ProvideDatabaseFx),
)

func ProvideDatabaseFx(cfg *config.Config, modelsOpt *ModelsOption, logger *logging.Service) (*gorm.DB, error) {
	return ProvideDatabase(*cfg, modelsOpt, logger)
}
