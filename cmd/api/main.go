package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/bootstrap"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/http/handlers"
	httpapi "github.com/jwywoo26-LR/cut-generation-client-sub000/internal/http/httpapi"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.Open(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise services")
	}
	defer svc.Close()

	app := handlers.NewApp(svc.Orchestrator, &logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		StoragePath:     cfg.StoragePath,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CORSOrigins:     cfg.CORSOrigins,
	})
	server := infra.NewHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr()).Bool("board", svc.Publisher != nil).Msg("API listening")
		return server.Start()
	})
	g.Go(func() error {
		return server.ShutdownOnDone(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}
