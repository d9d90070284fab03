package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	httpserver "storepulse/internal/adapters/http_server"
	"storepulse/internal/adapters/observability"
	redisad "storepulse/internal/adapters/redis"
	"storepulse/internal/app"
	"storepulse/internal/shared"
	"storepulse/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	repo, err := mysql.New(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("mysql connect")
	}
	defer repo.Close()

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	q := app.NewQueryService(repo, cache, int(cfg.CacheTTL.Seconds()))

	srv := httpserver.New()
	httpserver.NewHandlers(q).Register(srv)
	srv.Mount("/metrics", observability.MetricsHandler(observability.InitRegistry()))

	hs := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("api listening")
		if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return hs.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
	log.Info().Msg("api shut down")
}
