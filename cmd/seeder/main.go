package main

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"swipess_api/internal/adapters/observability"
	redisad "swipess_api/internal/adapters/redis"
	"swipess_api/internal/shared"
	mysqlrepo "swipess_api/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "seeder")

	log.Info().
		Int("workers", cfg.SeedWorkers).
		Int("packages", len(shared.DefaultPackages)).
		Msg("seeder starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.NewCache(redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB))

	sem := semaphore.NewWeighted(int64(cfg.SeedWorkers))
	var wg sync.WaitGroup

	for _, pkg := range shared.DefaultPackages {
		pkg := pkg

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := repo.UpsertPackage(ctx, pkg); err != nil {
				log.Warn().Int64("id", pkg.ID).Err(err).Msg("seed failed")
				return
			}
			log.Info().Int64("id", pkg.ID).Str("name", pkg.Name).Msg("seed ok")
		}()
	}

	wg.Wait()

	// drop cached package views so the next read sees the new rows
	if err := cache.Del(ctx, "pkg:active"); err != nil {
		log.Warn().Err(err).Msg("cache invalidation failed")
	}
	for _, pkg := range shared.DefaultPackages {
		if err := cache.Del(ctx, fmt.Sprintf("pkg:%d", pkg.ID)); err != nil {
			log.Warn().Int64("id", pkg.ID).Err(err).Msg("cache invalidation failed")
		}
	}

	log.Info().Msg("seed completed")
}
