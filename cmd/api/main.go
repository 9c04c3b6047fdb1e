package main

import (
	"context"

	"go-leave/internal/app"
	"go-leave/internal/bootstrap"
	"go-leave/internal/config"
	"go-leave/internal/shared/apperror"

	"github.com/gin-gonic/gin"
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

	if err := cfg.RequireAPI(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	apperror.Init()

	ctx := context.Background()
	var shutdownHooks []func(context.Context)
	if cfg.TracingEnabled {
		shutdownTracing, err := bootstrap.InitTracing(ctx, nil)
		if err != nil {
			logger.Fatal("init tracing failed", zap.Error(err))
		}
		shutdownHooks = append(shutdownHooks, func(ctx context.Context) { _ = shutdownTracing(ctx) })
	}

	infra, err := app.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("connect infrastructure failed", zap.Error(err))
	}
	shutdownHooks = append(shutdownHooks, func(context.Context) { infra.Close() })

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// build dependency + routes
	if err := app.BuildApp(ctx, r, infra); err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	bootstrap.StartHTTPServer(
		r,
		bootstrap.DefaultServerConfig(cfg.Port),
		bootstrap.NewStdoutAuditLogger(logger),
		shutdownHooks...,
	)
}
