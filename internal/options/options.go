package options

import (
	"go.uber.org/fx"

	"github.com/manifold-app/backend/config"
	"github.com/manifold-app/backend/session"
)

type Options struct {
	Config         *config.Config
	EnableDatabase bool
	DatabaseModels []any
	EnableKeyValue bool
	EnableSessions bool
	SessionOptions *session.Options
	EnableMail     bool
	EnableAuth     bool
	ExtraFxOptions []fx.Option
}

type Option func(*Options)

func WithConfig(cfg *config.Config) Option {
	return func(opts *Options) {
		opts.Config = cfg
	}
}

func WithDatabase(models ...any) Option {
	return func(opts *Options) {
		opts.EnableDatabase = true
		opts.DatabaseModels = append(opts.DatabaseModels, models...)
	}
}

func WithKeyValue() Option {
	return func(opts *Options) {
		opts.EnableKeyValue = true
	}
}

func WithSessions(sessionOpts ...*session.Options) Option {
	return func(opts *Options) {
		opts.EnableSessions = true
		if len(sessionOpts) > 0 {
			opts.SessionOptions = sessionOpts[0]
		}
	}
}

func WithMail() Option {
	return func(opts *Options) {
		opts.EnableMail = true
	}
}

func WithAuth() Option {
	return func(opts *Options) {
		opts.EnableAuth = true
	}
}

func WithFxOptions(fxOpts ...fx.Option) Option {
	return func(opts *Options) {
		opts.ExtraFxOptions = append(opts.ExtraFxOptions, fxOpts...)
	}
}
