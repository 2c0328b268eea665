package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Rrens/tutor-chat/internal/api"
	customMiddleware "github.com/Rrens/tutor-chat/internal/api/middleware"
	"github.com/Rrens/tutor-chat/internal/app"
	"github.com/Rrens/tutor-chat/internal/config"
	"github.com/Rrens/tutor-chat/internal/logging"
	"github.com/Rrens/tutor-chat/internal/security"
	"github.com/Rrens/tutor-chat/internal/service"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			fmt.Printf("Loaded .env from: %s\n", p)
			break
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logCloser, err := logging.Setup(cfg.Logging, cfg.Server.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
	log.Info().Msg("Server stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting tutor chat API server")

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	secret := cfg.Auth.SessionSecret
	if secret == "" {
		key, err := security.GenerateKey()
		if err != nil {
			return err
		}
		secret = hex.EncodeToString(key)
		log.Warn().Msg("SESSION_SECRET not set, using a random secret; sessions will not survive a restart")
	}
	tokens, err := security.NewTokenManager(secret, cfg.Auth.SessionTTL)
	if err != nil {
		return err
	}

	registry := service.NewSessionRegistry(cfg.Auth.IdleTTL)

	deps := api.Dependencies{
		Store:     a.Store,
		Chat:      a.Chat,
		Registry:  registry,
		Tokens:    tokens,
		LLMRouter: a.LLMRouter,
	}
	if a.Limiter != nil {
		deps.Limiter = customMiddleware.Limiter(a.Limiter)
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(cfg, deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		registry.Run(gctx, cfg.Auth.SweepInterval)
		return nil
	})

	g.Go(func() error {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		return nil
	})

	return g.Wait()
}
