package app

import (
	"context"

	"go-leave/internal/actor"
	"go-leave/internal/auth"
	"go-leave/internal/leave"
	"go-leave/internal/rbac"

	"gorm.io/gorm"
)

// Tables gorm does not own: the outbox is written with plain SQL inside
// service transactions and counters are bumped by a single upsert.
var rawSchema = []string{
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id UUID PRIMARY KEY,
		request_id TEXT,
		aggregate_type VARCHAR(50) NOT NULL,
		aggregate_id UUID NOT NULL,
		event_type VARCHAR(100) NOT NULL,
		topic VARCHAR(200) NOT NULL,
		payload JSONB NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		retry_count INT NOT NULL DEFAULT 0,
		error_message TEXT,
		next_retry_at TIMESTAMPTZ,
		processed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_events_pending
		ON outbox_events (status, next_retry_at, created_at)`,
	`CREATE TABLE IF NOT EXISTS sequence_counters (
		counter_type VARCHAR(50) PRIMARY KEY,
		last_value BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&actor.Actor{},
		&auth.UserAccount{},
		&leave.LeaveRequest{},
		&leave.TransitionRecord{},
		&rbac.RolePermission{},
	); err != nil {
		return err
	}

	for _, stmt := range rawSchema {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
