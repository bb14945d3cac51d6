package app

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ollamachat/chathub/internal/ai"
	"github.com/ollamachat/chathub/internal/config"
	"github.com/ollamachat/chathub/internal/core"
	transporthttp "github.com/ollamachat/chathub/internal/transport/http"
)

// App wires together core, AI and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	backend         *ai.Client
	cfg             config.Config
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) *App {
	hub := core.NewHub(cfg.DefaultRoom, cfg.Rooms, logger)

	backend := ai.NewClient(cfg.Ollama.URL, cfg.Ollama.Model, cfg.Ollama.GenerateTimeout, logger)
	dispatcher := ai.NewDispatcher(backend, hub, cfg.Ollama.GenerateTimeout, logger)
	hub.SetAIDispatcher(dispatcher)

	server := transporthttp.NewServer(hub, backend, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		backend:         backend,
		cfg:             cfg,
		log:             logger,
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	// AI bootstrap never gates chat traffic; the server comes up
	// immediately and AI answers degrade to fallbacks until the
	// backend is ready.
	go a.bootstrapAI(ctx)

	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}

		return <-serverErr
	}
}

// bootstrapAI waits for the backend and ensures the model is present.
// Failures leave the server running degraded.
func (a *App) bootstrapAI(ctx context.Context) {
	if !a.backend.WaitReady(ctx, a.cfg.Ollama.ReadyAttempts, a.cfg.Ollama.ReadyInterval) {
		a.log.Warn().Msg("starting without ai backend: ai features degraded")
		return
	}

	if err := a.backend.EnsureModel(ctx, a.cfg.Ollama.PullAttempts); err != nil {
		a.log.Warn().Err(err).Str("model", a.backend.Model()).Msg("model unavailable: ai features degraded")
		return
	}

	a.log.Info().Str("model", a.backend.Model()).Msg("ai backend ready")
}
