package main

import (
	"context"

	"go-leave/internal/app"
	"go-leave/internal/bootstrap"
	"go-leave/internal/config"
	"go-leave/internal/shared/apperror"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := bootstrap.NewLogger(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := cfg.RequireKafka(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	apperror.Init()

	ctx, stop := bootstrap.WaitForSignal(context.Background())
	defer stop()

	if err := app.RunConsumer(ctx, []string{cfg.KafkaBroker}, cfg.KafkaGroup, logger); err != nil {
		logger.Fatal("run consumer failed", zap.Error(err))
	}
}
