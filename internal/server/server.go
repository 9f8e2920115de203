// Package server exposes the siting engine, the wind grid fetcher and
// the assessment generator over HTTP.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/Karthikk1803/WindSiteAI/internal/config"
	"github.com/Karthikk1803/WindSiteAI/internal/metrics"
	"github.com/Karthikk1803/WindSiteAI/internal/provider/openmeteo"
	"github.com/Karthikk1803/WindSiteAI/internal/provider/overpass"
)

// Dependencies holds the collaborators the HTTP handlers need. A nil
// provider disables the matching fetch and the handlers degrade.
type Dependencies struct {
	Wind               *openmeteo.Client
	Obstacles          *overpass.Client
	MaxObstacleAreaKm2 float64
	Logger             *zap.Logger
}

// Server serves the siting API.
type Server struct {
	app    *fiber.App
	port   int
	logger *zap.Logger
}

// New builds the fiber app with all middleware and routes registered.
func New(cfg *config.Config, deps *Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:           time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout:          time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
		BodyLimit:             1024 * 1024,
		AppName:               "WindSiteAI API",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(metrics.Middleware())
	app.Use(requestLogger(deps.Logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Server.AllowOrigins, ", "),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Get("/healthz", HealthHandler())
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")
	api.Post("/optimize", OptimizeHandler(deps))
	api.Post("/wind-grid", WindGridHandler(deps))
	api.Get("/analyze", AnalyzeHandler(deps))
	api.Get("/turbines", TurbinesHandler())

	return &Server{app: app, port: cfg.Server.Port, logger: deps.Logger}
}

// Start serves HTTP until Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("server starting", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// requestLogger emits one structured line per request.
func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		reqID, _ := c.Locals("requestid").(string)
		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", reqID),
		)
		return err
	}
}
