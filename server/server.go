package server

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/manifold-app/backend/config"
	"github.com/manifold-app/backend/services/logging"
)

type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	logger *logging.Service
}

func New(cfg *config.Config, logger *logging.Service) *Server {
	e := echo.New()
	e.HideBanner = true

	return &Server{
		echo:   e,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
	if s.logger != nil {
		s.logger.Info("starting server", zap.String("addr", addr))
	}

	return s.echo.Start(addr)
}

func (s *Server) Get(path string, handler echo.HandlerFunc) {
	s.echo.GET(path, handler)
}

func (s *Server) Post(path string, handler echo.HandlerFunc) {
	s.echo.POST(path, handler)
}

func (s *Server) Put(path string, handler echo.HandlerFunc) {
	s.echo.PUT(path, handler)
}

func (s *Server) Delete(path string, handler echo.HandlerFunc) {
	s.echo.DELETE(path, handler)
}

func (s *Server) Patch(path string, handler echo.HandlerFunc) {
	s.echo.PATCH(path, handler)
}

func (s *Server) Group(prefix string) *echo.Group {
	return s.echo.Group(prefix)
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}
