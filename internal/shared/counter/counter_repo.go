package counter

import (
	"context"
	"database/sql"
	"fmt"

	"go-leave/internal/shared/connection"

	"gorm.io/gorm"
)

const TypeLeaveRequest = "leave_request"

//go:generate mockgen -destination=mock/counter_repo_mock.go -package=mock . Repository
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	GetNextValue(ctx context.Context, counterType string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx draws numbers inside tx, so a rolled back insert returns its number.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.GormOnTx(r.db, tx)}
}

func (r *repository) GetNextValue(ctx context.Context, counterType string) (int64, error) {
	var nextValue int64

	// single statement upsert so concurrent callers never share a value
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO sequence_counters (counter_type, last_value, updated_at)
		VALUES (?, 1, now())
		ON CONFLICT (counter_type) DO UPDATE
		SET last_value = sequence_counters.last_value + 1, updated_at = now()
		RETURNING last_value
	`, counterType).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}

// FormatLeaveRequestNumber renders the human facing reference, e.g. LR-000042.
func FormatLeaveRequestNumber(v int64) string {
	return fmt.Sprintf("LR-%06d", v)
}
