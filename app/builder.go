package app

import (
	"fmt"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/manifold-app/backend/config"
	"github.com/manifold-app/backend/database"
	"github.com/manifold-app/backend/internal/options"
	"github.com/manifold-app/backend/kv"
	"github.com/manifold-app/backend/server"
	"github.com/manifold-app/backend/services/auth"
	"github.com/manifold-app/backend/services/confirmation"
	"github.com/manifold-app/backend/services/identity"
	"github.com/manifold-app/backend/services/logging"
	"github.com/manifold-app/backend/services/mail"
	"github.com/manifold-app/backend/services/password"
	"github.com/manifold-app/backend/services/user"
	"github.com/manifold-app/backend/session"
)

// New assembles the application from the selected components. The config is
// loaded from the environment unless one is supplied explicitly.
func New(opts ...options.Option) (*App, error) {
	o := &options.Options{}
	for _, opt := range opts {
		opt(o)
	}

	cfg := o.Config
	if cfg == nil {
		cfg = &config.Config{}
		if err := config.LoadConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	resolveDependencies(o)

	logger, err := logging.NewService(logging.Config{
		Level:      logging.LogLevel(cfg.Log.Level),
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{
		config: cfg,
		logger: logger,
	}

	fxOptions := []fx.Option{
		fx.Supply(cfg),
		fx.Supply(logger),
		fx.NopLogger,
		server.NewProvider(),
	}

	if o.EnableDatabase {
		fxOptions = append(fxOptions,
			fx.Supply(database.WithModels(o.DatabaseModels...)),
			database.Module,
			fx.Invoke(func(db *gorm.DB) { app.db = db }),
		)
	}

	if o.EnableKeyValue {
		fxOptions = append(fxOptions, kv.Module)
	}

	if o.EnableSessions {
		sessionOpts := o.SessionOptions
		fxOptions = append(fxOptions,
			fx.Supply(sessionOpts),
			session.Module,
			fx.Invoke(func(srv *server.Server, manager *session.Manager, service session.SessionService) {
				if manager == nil {
					return
				}
				srv.Echo().Use(session.Middleware(manager))
				if service != nil {
					srv.Echo().Use(session.ServiceMiddleware(service))
				}
			}),
		)
	}

	if o.EnableMail {
		fxOptions = append(fxOptions, mail.Module)
	}

	if o.EnableAuth {
		fxOptions = append(fxOptions,
			password.Module,
			confirmation.Module,
			identity.Module,
			user.Module,
			auth.Module,
		)
	}

	fxOptions = append(fxOptions, o.ExtraFxOptions...)

	fxOptions = append(fxOptions, fx.Invoke(func(srv *server.Server) {
		app.server = srv
	}))

	app.fx = fx.New(fxOptions...)

	return app, nil
}

// resolveDependencies enables the components a selected component cannot run
// without and registers their models for automigration.
func resolveDependencies(o *options.Options) {
	if o.EnableAuth {
		o.EnableDatabase = true
		o.EnableKeyValue = true
		o.DatabaseModels = append(o.DatabaseModels, &user.User{}, &identity.LoginIdentity{})
	}

	if o.EnableSessions {
		o.EnableDatabase = true
		o.DatabaseModels = append(o.DatabaseModels, &session.LoginSession{})
	}
}
