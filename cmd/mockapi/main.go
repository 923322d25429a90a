package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"library-client/internal/apitest"
	"library-client/internal/config"
	"library-client/pkg/logger"
)

func main() {
	// .env in development; real environment otherwise
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := Serve(cfg); err != nil {
		log.Fatal().Err(err).Msg("mock API stopped")
	}
}

// Serve runs the in-memory API until SIGINT or SIGTERM.
func Serve(cfg *config.Config) error {
	server, err := apitest.New(apitest.Options{
		Secret:            cfg.MockAPI.JWTSecret,
		AccessTTL:         time.Duration(cfg.MockAPI.AccessTokenExpiry) * time.Minute,
		RefreshTTL:        time.Duration(cfg.MockAPI.RefreshTokenExpiry) * time.Hour,
		Superuser:         cfg.MockAPI.SuperuserName,
		SuperuserPassword: cfg.MockAPI.SuperuserPassword,
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	port := cfg.MockAPI.Port
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", port),
		Handler:        server.Handler(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", "http://localhost:"+port).
			Str("env", cfg.App.Environment).
			Str("superuser", cfg.MockAPI.SuperuserName).
			Msg("mock API starting")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case <-quit:
	}

	log.Info().Msg("shutting down mock API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info().Msg("mock API exited")
	return nil
}
