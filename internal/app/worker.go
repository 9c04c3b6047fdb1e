package app

import (
	"context"
	"time"

	"go-leave/internal/clock"
	"go-leave/internal/leave"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/messaging/kafka/producer"
	"go-leave/internal/shared/connection"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func NewSweeper(i *Infra) *leave.Sweeper {
	cfg := i.Config
	deps := buildLeave(i)
	return leave.NewSweeper(deps.repo, deps.service,
		leave.WithSweepThreshold(cfg.ExpirationThreshold),
		leave.WithSweepConcurrency(cfg.SweepConcurrency),
		leave.WithSweepBatchSize(cfg.SweepBatchSize),
		leave.WithSweepClock(clock.System()),
		leave.WithSweepLogger(i.Logger),
	)
}

// SweepOnce runs a single expiration pass at the given instant.
func SweepOnce(ctx context.Context, i *Infra, at time.Time) (leave.SweepResult, error) {
	return NewSweeper(i).RunOnce(ctx, at)
}

// RunWorker sweeps on SWEEP_INTERVAL and, when a broker is configured,
// publishes the outbox until ctx is done.
func RunWorker(ctx context.Context, i *Infra) error {
	cfg := i.Config
	logger := i.Logger.Named("app.worker")

	g, gctx := errgroup.WithContext(ctx)

	sweeper := NewSweeper(i)
	g.Go(func() error {
		return sweeper.Run(gctx, cfg.SweepInterval)
	})

	if cfg.KafkaBroker != "" {
		writer, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, connectRetries)
		if err != nil {
			return err
		}
		defer writer.Close()

		outboxRepo := kafka.NewOutboxRepository(i.SQLDB)
		g.Go(func() error {
			producer.ProcessOutboxEvents(gctx, outboxRepo, writer, logger, cfg.OutboxPollInterval)
			return nil
		})
	} else {
		logger.Warn("KAFKA_BROKER not set, outbox publishing disabled")
	}

	logger.Info("worker started",
		zap.Duration("sweep_interval", cfg.SweepInterval),
		zap.Duration("expiration_threshold", cfg.ExpirationThreshold),
	)
	err := g.Wait()
	logger.Info("worker shutting down")
	return err
}
