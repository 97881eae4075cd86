package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"campus_rentals/internal/adapters/observability"
	"campus_rentals/internal/adapters/trigger"
	"campus_rentals/internal/shared"
)

// Fires the API's cron trigger on TRIGGER_CRON.
func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	log.Logger = observability.NewLogger(cfg.AppEnv, "scheduler", cfg.LogLevel)

	client, err := trigger.New(cfg.TriggerURL, cfg.CronSecret, cfg.NotifyTimeout+30*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("trigger client")
	}

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := cron.VerbosePrintfLogger(&log.Logger)
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	_, err = c.AddFunc(cfg.TriggerCron, func() {
		report, err := client.Run(ctx)
		if err != nil {
			log.Error().Err(err).Str("url", cfg.TriggerURL).Msg("trigger failed")
			return
		}
		log.Info().Interface("report", report).Msg("trigger ok")
	})
	if err != nil {
		log.Fatal().Err(err).Str("spec", cfg.TriggerCron).Msg("invalid TRIGGER_CRON")
	}

	c.Start()
	log.Info().Str("spec", cfg.TriggerCron).Str("url", cfg.TriggerURL).Msg("scheduler started")
	<-ctx.Done()
	<-c.Stop().Done()
	log.Info().Msg("scheduler stopped")
}
