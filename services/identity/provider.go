package identity

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/manifold-app/backend/services/logging"
	"github.com/manifold-app/backend/services/password"
)

func ProvideIdentityService(db *gorm.DB, hasher *password.Service, logger *logging.Service) *Service {
	return NewService(db, hasher, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideIdentityService),
)
