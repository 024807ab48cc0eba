package user

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/manifold-app/backend/services/identity"
	"github.com/manifold-app/backend/services/logging"
	"github.com/manifold-app/backend/session"
)

type OptionalSessionService struct {
	fx.In
	Sessions session.SessionService `optional:"true"`
}

func ProvideUserService(db *gorm.DB, identities *identity.Service, optSessions OptionalSessionService, logger *logging.Service) *Service {
	return NewService(db, identities, optSessions.Sessions, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideUserService),
)
