package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"go-leave/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// TransitionSink receives every decoded leave_transitioned event.
type TransitionSink interface {
	RecordTransition(ctx context.Context, event events.LeaveTransitioned) error
}

func NewReader(brokers []string, groupID string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    events.LeaveTransitionsTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// ConsumeLeaveTransitions commits a message only once the sink accepted it.
// Undecodable messages are committed and dropped.
func ConsumeLeaveTransitions(
	ctx context.Context,
	reader MessageReader,
	sink TransitionSink,
	logger *zap.Logger,
) {
	if logger == nil {
		logger = zap.L()
	}
	log := logger.Named("kafka.consumer.leave_transitions")
	log.Info("leave transition consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				log.Info("leave transition consumer stopped")
				return
			}
			log.Error("fetch leave transition message failed", zap.Error(err))
			continue
		}

		if eventType := header(msg, "event_type"); eventType != "" && eventType != events.LeaveTransitionedEvent {
			log.Debug("skipping unrelated event", zap.String("event_type", eventType))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		var event events.LeaveTransitioned
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave_transitioned event failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := sink.RecordTransition(ctx, event); err != nil {
			log.Error("record leave transition failed",
				zap.String("leave_request_id", event.LeaveRequestID),
				zap.String("action", event.Action),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave transition message failed", zap.Error(err))
			continue
		}
	}
}

func header(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
