package app

import (
	"context"

	"go-leave/internal/bootstrap"
	"go-leave/internal/messaging/kafka/consumer"

	"go.uber.org/zap"
)

// RunConsumer mirrors leave transition events into the audit log until ctx
// is done.
func RunConsumer(ctx context.Context, brokers []string, groupID string, logger *zap.Logger) error {
	logger = logger.Named("app.consumer")

	reader := consumer.NewReader(brokers, groupID)
	defer reader.Close()

	logger.Info("consumer started", zap.Strings("brokers", brokers), zap.String("group", groupID))
	consumer.ConsumeLeaveTransitions(ctx, reader, bootstrap.NewStdoutAuditLogger(logger), logger)
	logger.Info("consumer shutting down")
	return nil
}
