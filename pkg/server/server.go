// Package server bootstraps the HTTP API.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/spielplan/config"
)

// RouteRegistrar is anything that can attach its routes to the server.
type RouteRegistrar interface {
	RegisterRoutes(e *echo.Echo)
}

// Server wraps the echo instance.
type Server struct {
	e    *echo.Echo
	log  ectologger.Logger
	port int
}

// New builds the echo server with middleware and routes attached.
func New(cfg *config.Config, log ectologger.Logger, registrars ...RouteRegistrar) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(otelecho.Middleware(cfg.AppName))

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

	for _, r := range registrars {
		r.RegisterRoutes(e)
	}

	return &Server{e: e, log: log, port: cfg.Port}
}

// Start listens until the server is shut down or fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.log.WithFields(map[string]any{"addr": addr}).Info("Starting HTTP server")
	return s.e.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
