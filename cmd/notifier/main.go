package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"campus_rentals/internal/adapters/mail"
	"campus_rentals/internal/adapters/observability"
	"campus_rentals/internal/app"
	"campus_rentals/internal/shared"
	"campus_rentals/internal/storage"
)

// One notification batch against the configured store, without the API.
func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	log.Logger = observability.NewLogger(cfg.AppEnv, "notifier", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("store", cfg.StoreBackend).
		Str("mail", cfg.MailTransport).
		Int("workers", cfg.NotifyWorkers).
		Msg("notifier starting")

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store open failed")
	}
	defer func() { _ = store.Close(context.Background()) }()

	mailer, err := mail.New(cfg.MailConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("mailer not configured")
	}

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	svc := app.NewNotifierService(store, store, store, mailer, cfg.NotifierConfig())
	report, err := svc.ProcessSavedSearches(ctx)
	if err != nil {
		log.Error().Err(err).Msg("notification batch failed")
		_ = store.Close(context.Background())
		os.Exit(1)
	}
	log.Info().Interface("report", report).Msg("notification batch completed")
}
