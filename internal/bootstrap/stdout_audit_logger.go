package bootstrap

import (
	"context"
	"time"

	"go-leave/internal/events"
	"go-leave/internal/shared/contextutil"

	"go.uber.org/zap"
)

type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}

// StdoutAuditLogger writes audit entries as structured zap logs under the
// "audit" logger name.
type StdoutAuditLogger struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewStdoutAuditLogger(logger ...*zap.Logger) *StdoutAuditLogger {
	l := zap.L().Named("audit")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit")
	}
	return &StdoutAuditLogger{logger: l, now: time.Now}
}

func (l *StdoutAuditLogger) Log(ctx context.Context, entry AuditLog) {
	fields := []zap.Field{
		zap.String("timestamp", l.now().UTC().Format(time.RFC3339)),
		zap.String("action", entry.Action),
		zap.String("message", entry.Message),
		zap.Any("meta", entry.Meta),
	}
	if requestID := contextutil.GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	l.logger.Info("audit event", fields...)
}

// RecordTransition mirrors a leave_transitioned event into the audit log.
func (l *StdoutAuditLogger) RecordTransition(ctx context.Context, e events.LeaveTransitioned) error {
	actor := e.ActorID
	if actor == "" {
		actor = "system"
	}
	l.Log(ctx, AuditLog{
		Action:  "LEAVE_" + e.Action,
		Message: "leave request " + e.RequestNumber + " moved " + e.FromStatus + " -> " + e.ToStatus,
		Meta: map[string]any{
			"leave_request_id": e.LeaveRequestID,
			"owner_id":         e.OwnerID,
			"actor_kind":       e.ActorKind,
			"actor":            actor,
			"occurred_at":      e.OccurredAt.UTC().Format(time.RFC3339),
		},
	})
	return nil
}
