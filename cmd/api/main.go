package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"swipess_api/internal/adapters/assist"
	"swipess_api/internal/adapters/geocode"
	server "swipess_api/internal/adapters/http_server"
	"swipess_api/internal/adapters/media"
	"swipess_api/internal/adapters/observability"
	redisad "swipess_api/internal/adapters/redis"
	"swipess_api/internal/app"
	"swipess_api/internal/shared"
	mysqlrepo "swipess_api/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "api")

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// state stores
	repo := mysqlrepo.New(db)
	rdb := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	cache := redisad.NewCache(rdb)
	kv := redisad.NewKV(rdb, cfg.SessionTTL, cfg.PickerTTL, cfg.PendingTTL, cfg.DialogTTL)

	// outbound clients
	geo, err := geocode.New(cfg.GeocodeBase, cfg.GeocodeKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize geocode client")
	}
	store, err := media.New(ctx, cfg.MediaRegion, cfg.MediaBucket, cfg.MediaEndpoint, cfg.MediaPublicBase)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize media store")
	}
	assistant, err := assist.New(cfg.AssistBase, cfg.AssistKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize assist client")
	}

	// services
	pkgs := app.NewPackageService(repo, cache, cfg.CacheTTL)
	h := &server.Handlers{
		Onboarding: app.NewOnboardingService(kv, repo, store, cfg.UploadWorkers),
		Location:   app.NewLocationService(kv, geo, repo),
		Packages:   pkgs,
		Purchases:  app.NewPurchaseService(pkgs, kv, repo, cfg.CheckoutBase),
		Assistant:  app.NewAssistantService(kv, assistant),
	}

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h, server.Auth(cfg.JWTSecret))

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
