package auth

import (
	"go.uber.org/fx"

	"github.com/manifold-app/backend/config"
	"github.com/manifold-app/backend/services/confirmation"
	"github.com/manifold-app/backend/services/identity"
	"github.com/manifold-app/backend/services/logging"
	"github.com/manifold-app/backend/services/mail"
	"github.com/manifold-app/backend/services/password"
	"github.com/manifold-app/backend/services/user"
	"github.com/manifold-app/backend/session"
)

type ServiceParams struct {
	fx.In

	Identities    *identity.Service
	Users         *user.Service
	Hasher        *password.Service
	Confirmations *confirmation.Service
	Sessions      *session.Manager       `optional:"true"`
	SessionRows   session.SessionService `optional:"true"`
	Mailer        *mail.Service          `optional:"true"`
	Config        *config.Config
	Logger        *logging.Service
}

func ProvideAuthService(p ServiceParams) *Service {
	var mailer Mailer
	if p.Mailer != nil {
		mailer = p.Mailer
	}
	return NewService(p.Identities, p.Users, p.Hasher, p.Confirmations,
		p.Sessions, p.SessionRows, mailer, &p.Config.App, p.Logger)
}

var Module = fx.Options(
	fx.Provide(ProvideAuthService),
)
