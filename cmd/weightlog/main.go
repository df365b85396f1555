package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	adapthttp "weightlog/internal/adapter/http"
	"weightlog/internal/adapter/memory"
	"weightlog/internal/adapter/postgres"
	"weightlog/internal/adapter/redis"
	"weightlog/internal/app"
	"weightlog/internal/config"
	"weightlog/internal/domain"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Fatal("store open", zap.Error(err))
	}
	defer closeStore()

	// Server builds carry no platform IAP SDK; the in-process gateway
	// stands in behind the same port.
	gateway := memory.NewGateway()

	journal := app.NewJournalService(store, logger)
	billing := app.NewBillingService(gateway, store, logger)
	settings := app.NewSettingsService(store, logger)
	charts := app.NewChartsService(journal, billing)

	ctx := context.Background()
	if err := journal.Load(ctx); err != nil {
		logger.Warn("journal load", zap.Error(err))
	}
	billing.Refresh(ctx)

	h := adapthttp.New(journal, charts, settings, billing, logger).Handler()
	logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("store", cfg.Store))
	if err := http.ListenAndServe(cfg.Addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("serve", zap.Error(err))
	}
}

func openStore(cfg config.Config) (domain.Store, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		s, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.StoreRedis:
		s, err := redis.Open(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
	return memory.NewStore(), func() {}, nil
}
