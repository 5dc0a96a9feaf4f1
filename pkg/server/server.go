package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nikogura/cover-letter/pkg/config"
	"github.com/nikogura/cover-letter/pkg/coverletter"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// ShutdownTimeout bounds how long in-flight requests may finish after a stop signal.
const ShutdownTimeout = 10 * time.Second

// multipartOverhead is the body allowance beyond the résumé itself for form fields.
const multipartOverhead = 1 << 20

// Server exposes the cover letter pipeline over HTTP.
type Server struct {
	app       *fiber.App
	generator *coverletter.Generator
	drafts    *DraftStore
	limiter   *rate.Limiter
	logger    *slog.Logger
	maxUpload int64
	now       func() time.Time
}

// New builds a Server with its routes registered.
func New(generator *coverletter.Generator, cfg config.ServerConfig, logger *slog.Logger) (s *Server) {
	if logger == nil {
		logger = slog.Default()
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 1
	}

	ttl := time.Duration(cfg.DraftTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}

	s = &Server{
		generator: generator,
		drafts:    NewDraftStore(ttl),
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm),
		logger:    logger,
		maxUpload: cfg.MaxUploadBytes,
		now:       time.Now,
	}

	// Immutable: route params outlive the request as draft keys.
	s.app = fiber.New(fiber.Config{
		AppName:               "cover-letter",
		BodyLimit:             int(cfg.MaxUploadBytes) + multipartOverhead,
		DisableStartupMessage: true,
		Immutable:             true,
		ErrorHandler:          s.handleFiberError,
	})
	s.app.Use(recover.New())
	s.app.Use(s.logRequests)
	s.register()

	return s
}

// App returns the underlying fiber application.
func (s *Server) App() (app *fiber.App) {
	app = s.app
	return app
}

// Drafts returns the draft store.
func (s *Server) Drafts() (store *DraftStore) {
	store = s.drafts
	return store
}

func (s *Server) register() {
	v1 := s.app.Group("/api").Group("/v1")

	v1.Get("/health", s.handleHealth)

	letters := v1.Group("/letters")
	letters.Post("/", s.handleCreateLetter)
	letters.Get("/:id", s.handleGetLetter)
	letters.Put("/:id", s.handleUpdateLetter)
	letters.Delete("/:id", s.handleDeleteLetter)
	letters.Get("/:id/pdf", s.handleLetterPDF)

	v1.Post("/pdf", s.handleRenderPDF)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) (err error) {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr)
	}()

	s.logger.Info("server listening", "addr", addr, "model", s.generator.Model())

	select {
	case err = <-errCh:
		if err != nil {
			err = errors.Wrapf(err, "failed to serve on %s", addr)
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	err = s.app.ShutdownWithTimeout(ShutdownTimeout)
	if err != nil {
		err = errors.Wrap(err, "server shutdown failed")
		return err
	}

	err = <-errCh
	if err != nil {
		err = errors.Wrap(err, "server stopped with error")
	}
	return err
}

func (s *Server) logRequests(c *fiber.Ctx) (err error) {
	start := time.Now()
	err = c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		}
	}

	level := slog.LevelInfo
	if status >= fiber.StatusInternalServerError {
		level = slog.LevelError
	}

	s.logger.Log(c.UserContext(), level, "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(start),
	)

	return err
}
