package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/manifold-app/backend/config"
	"github.com/manifold-app/backend/server"
	"github.com/manifold-app/backend/services/logging"
)

type App struct {
	fx     *fx.App
	config *config.Config
	logger *logging.Service
	db     *gorm.DB
	server *server.Server
}

func (a *App) Start() error {
	return a.fx.Start(context.Background())
}

// Run starts the application and blocks until SIGINT or SIGTERM, then shuts
// down gracefully.
func (a *App) Run() {
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	if a.logger != nil {
		a.logger.Info("received shutdown signal, stopping gracefully")
	}

	a.Stop()
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.fx.Stop(ctx); err != nil {
		if a.logger != nil {
			a.logger.Error("failed to stop application gracefully")
		} else {
			log.Printf("Failed to stop application gracefully: %v", err)
		}
	}
}

func (a *App) StartTest() error {
	return a.fx.Start(context.Background())
}

func (a *App) StopTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := a.fx.Stop(ctx); err != nil && a.logger != nil {
		a.logger.Error("failed to stop test application")
	}
}

func (a *App) Server() *echo.Echo {
	if a.server == nil {
		return nil
	}
	return a.server.Echo()
}

func (a *App) DB() *gorm.DB {
	return a.db
}

func (a *App) Logger() *logging.Service {
	return a.logger
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) RegisterRoutes(fn func(*echo.Echo)) {
	if e := a.Server(); e != nil {
		fn(e)
	}
}

func (a *App) Get(path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) {
	if e := a.Server(); e != nil {
		e.GET(path, handler, middleware...)
	}
}

func (a *App) Post(path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) {
	if e := a.Server(); e != nil {
		e.POST(path, handler, middleware...)
	}
}

func (a *App) Put(path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) {
	if e := a.Server(); e != nil {
		e.PUT(path, handler, middleware...)
	}
}

func (a *App) Delete(path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) {
	if e := a.Server(); e != nil {
		e.DELETE(path, handler, middleware...)
	}
}

func (a *App) Patch(path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) {
	if e := a.Server(); e != nil {
		e.PATCH(path, handler, middleware...)
	}
}
