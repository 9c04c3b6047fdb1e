package consumer_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"go-leave/internal/events"
	"go-leave/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReader struct {
	msgs      []kafkago.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(context.Context) (kafkago.Message, error) {
	if len(r.msgs) == 0 {
		return kafkago.Message{}, io.EOF
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

type fakeSink struct {
	recordFn func(ctx context.Context, e events.LeaveTransitioned) error
	got      []events.LeaveTransitioned
}

func (s *fakeSink) RecordTransition(ctx context.Context, e events.LeaveTransitioned) error {
	if s.recordFn != nil {
		if err := s.recordFn(ctx, e); err != nil {
			return err
		}
	}
	s.got = append(s.got, e)
	return nil
}

func message(t *testing.T, offset int64, evt any, eventType string) kafkago.Message {
	t.Helper()
	value, err := json.Marshal(evt)
	require.NoError(t, err)
	return kafkago.Message{
		Offset:  offset,
		Value:   value,
		Headers: []kafkago.Header{{Key: "event_type", Value: []byte(eventType)}},
	}
}

func TestConsumeLeaveTransitions(t *testing.T) {
	occurred := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ok := events.LeaveTransitioned{
		EventType:      events.LeaveTransitionedEvent,
		LeaveRequestID: "leave-1",
		Action:         "approved_by_manager",
		OccurredAt:     occurred,
	}
	failing := ok
	failing.LeaveRequestID = "leave-2"

	reader := &fakeReader{msgs: []kafkago.Message{
		message(t, 1, ok, events.LeaveTransitionedEvent),
		{Offset: 2, Value: []byte("{not json")},
		message(t, 3, map[string]string{"x": "y"}, "something_else"),
		message(t, 4, failing, events.LeaveTransitionedEvent),
	}}
	sink := &fakeSink{recordFn: func(_ context.Context, e events.LeaveTransitioned) error {
		if e.LeaveRequestID == "leave-2" {
			return errors.New("sink down")
		}
		return nil
	}}

	consumer.ConsumeLeaveTransitions(context.Background(), reader, sink, zap.NewNop())

	require.Len(t, sink.got, 1)
	assert.Equal(t, "leave-1", sink.got[0].LeaveRequestID)
	assert.True(t, occurred.Equal(sink.got[0].OccurredAt))
	// offset 4 stays uncommitted so it is redelivered
	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
}

func TestConsumeLeaveTransitionsStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := &blockingReader{}
	done := make(chan struct{})
	go func() {
		consumer.ConsumeLeaveTransitions(ctx, reader, &fakeSink{}, zap.NewNop())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}

type blockingReader struct{}

func (blockingReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (blockingReader) CommitMessages(context.Context, ...kafkago.Message) error { return nil }
