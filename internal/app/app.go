package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/moodchat-server/internal/auth"
	"github.com/vovakirdan/moodchat-server/internal/config"
	"github.com/vovakirdan/moodchat-server/internal/core"
	"github.com/vovakirdan/moodchat-server/internal/log"
	"github.com/vovakirdan/moodchat-server/internal/mlclient"
	"github.com/vovakirdan/moodchat-server/internal/service/chat"
	"github.com/vovakirdan/moodchat-server/internal/service/insights"
	"github.com/vovakirdan/moodchat-server/internal/store"
	"github.com/vovakirdan/moodchat-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/moodchat-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	enricher        *core.Enricher
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      24 * time.Hour,
	}
	authService := auth.NewService(st, jwtConfig)

	moderation := mlclient.NewModerationClient(cfg.ToxicityAPIURL, cfg.ToxicityTimeout, log.Component(logger, "moderation"))
	emotion := mlclient.NewEmotionClient(cfg.EmotionAPIURL, cfg.EmotionTimeout)
	summarizer := mlclient.NewSummarizerClient(cfg.SummaryAPIURL, cfg.SummaryTimeout)

	registry := core.NewRegistry(log.Component(logger, "registry"))
	filter := core.NewAdmissionFilter(st, moderation, cfg.MessageLimit, cfg.TimeWindow, log.Component(logger, "admission"))
	enricher := core.NewEnricher(emotion, st, registry, cfg.EmotionTimeout, log.Component(logger, "enricher"))

	chatService := chat.New(st, filter, registry, enricher, log.Component(logger, "chat"))
	insightsService := insights.New(st, summarizer, cfg.MoodWindow, cfg.SummaryWindow, log.Component(logger, "insights"))

	server := transporthttp.NewServer(authService, st, registry, chatService, insightsService, *cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		enricher:        enricher,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
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
		a.cleanup(context.Background())
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup(shutdownCtx)
			return err
		}

		a.cleanup(shutdownCtx)
		return <-serverErr
	}
}

// cleanup drains in-flight enrichment work and closes resources.
func (a *App) cleanup(ctx context.Context) {
	if a.enricher != nil {
		if err := a.enricher.Shutdown(ctx); err != nil {
			a.log.Warn().Err(err).Msg("abandoning in-flight enrichment tasks")
		} else {
			a.log.Info().Msg("enrichment drained")
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
