package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "campus_rentals/internal/adapters/http_server"
	"campus_rentals/internal/adapters/mail"
	"campus_rentals/internal/adapters/observability"
	redisad "campus_rentals/internal/adapters/redis"
	"campus_rentals/internal/app"
	"campus_rentals/internal/domain"
	"campus_rentals/internal/shared"
	"campus_rentals/internal/storage"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("store open failed")
	}
	defer func() { _ = store.Close(context.Background()) }()

	// a dead cache only costs latency
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, continuing without cache")
		} else {
			cache = rc
			defer rc.Close()
		}
	}

	cron := server.CronConfig{Secret: cfg.CronSecret}
	if mailer, err := mail.New(cfg.MailConfig()); err != nil {
		log.Error().Err(err).Msg("mailer not configured; saved-search notifications disabled")
		cron.SetupErr = err
	} else {
		cron.Runner = app.NewNotifierService(store, store, store, mailer, cfg.NotifierConfig())
	}

	h := &server.Handlers{
		Search:        app.NewSearchService(store, cache, cfg.CacheTTL),
		Listings:      app.NewListingService(store, cache),
		SavedSearches: app.NewSavedSearchService(store),
		Favorites:     app.NewFavoriteService(store, store),
		Viewings:      app.NewViewingService(store, store),
		Users:         app.NewUserService(store),
		Reviews:       app.NewReviewService(store, store),
		Inquiries:     app.NewInquiryService(store, store),
		Messages:      app.NewMessageService(store, store),
		JWTSecret:     []byte(cfg.JWTSecret),
		Cron:          cron,
	}

	srv := server.New(server.Options{CORSOrigins: cfg.CORSOrigins})
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreBackend).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.NotifyTimeout+5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
