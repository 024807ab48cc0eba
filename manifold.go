package manifold

import (
	"go.uber.org/fx"

	"github.com/manifold-app/backend/app"
	"github.com/manifold-app/backend/config"
	"github.com/manifold-app/backend/internal/options"
	"github.com/manifold-app/backend/session"
)

type App = app.App

func New(opts ...options.Option) (*App, error) {
	return app.New(opts...)
}

func WithConfig(cfg *config.Config) options.Option {
	return options.WithConfig(cfg)
}

func WithDatabase(models ...any) options.Option {
	return options.WithDatabase(models...)
}

func WithKeyValue() options.Option {
	return options.WithKeyValue()
}

func WithSessions(sessionOpts ...*session.Options) options.Option {
	return options.WithSessions(sessionOpts...)
}

func WithMail() options.Option {
	return options.WithMail()
}

func WithAuth() options.Option {
	return options.WithAuth()
}

func WithFxOptions(fxOpts ...fx.Option) options.Option {
	return options.WithFxOptions(fxOpts...)
}
