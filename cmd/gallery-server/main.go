package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/photo-gallery-client/internal/config"
	"github.com/Sternrassler/photo-gallery-client/pkg/client"
	"github.com/Sternrassler/photo-gallery-client/pkg/logging"
	"github.com/Sternrassler/photo-gallery-client/pkg/pagination"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logging.Setup(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger(logging.ComponentServer)

	photoClient, err := client.New(cfg.ClientConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create photo client")
	}
	defer photoClient.Close()

	ctrl := pagination.NewController(photoClient, pagination.Config{Limit: cfg.API.PageLimit})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(ctrl),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("api", photoClient.BaseURL()).
			Int("page_limit", ctrl.Limit()).
			Msg("Starting gallery server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logger.Info().Msg("Gallery server stopped")
}
