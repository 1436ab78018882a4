// Package api exposes the pipeline over HTTP.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/Boniole/test-task-candidates-scraper/internal/pipeline"
)

// Runner is the part of the pipeline the API needs.
type Runner interface {
	Run(ctx context.Context, query string) *pipeline.Result
}

type Server struct {
	app    *fiber.App
	logger *zap.Logger
	addr   string
}

func New(runner Runner, logger *zap.Logger, host string, port int) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "candidates-scraper",
		ReadTimeout:  30 * time.Second,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestLogger(logger))

	handler := &resumesHandler{runner: runner, logger: logger}

	v1 := app.Group("/api/v1")
	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})
	v1.Get("/resumes", handler.handleGetResumes)

	return &Server{
		app:    app,
		logger: logger,
		addr:   fmt.Sprintf("%s:%d", host, port),
	}
}

func (s *Server) Listen() error {
	s.logger.Info("starting the http api", zap.String("addr", s.addr))
	return s.app.Listen(s.addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		logger.Info("http request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)

		return err
	}
}
