package leave

import (
	"context"
	"database/sql"
	"time"

	"go-leave/internal/shared/connection"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuditFilter narrows the audit log. Zero fields are ignored.
type AuditFilter struct {
	LeaveRequestID string
	Action         Action
	ActorID        string
	From           *time.Time
	To             *time.Time
	Limit          int
}

// ExpiryCursor is the last row of the previous FindExpirable page.
type ExpiryCursor struct {
	UpdatedAt time.Time
	ID        uuid.UUID
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error)
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) (bool, error)
	CreateTransition(ctx context.Context, rec *TransitionRecord) error
	ListTransitions(ctx context.Context, filter AuditFilter) ([]TransitionRecord, error)
	FindAllByOwner(ctx context.Context, ownerID string) ([]LeaveRequest, error)
	FindAllByManager(ctx context.Context, managerID string) ([]LeaveRequest, error)
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	FindExpirable(ctx context.Context, cutoff time.Time, after *ExpiryCursor, limit int) ([]LeaveRequest, error)
	HasOverlappingPeriod(ctx context.Context, ownerID string, startDate, endDate time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx runs every statement of the returned repository on tx.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.GormOnTx(r.db, tx)}
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateStatus moves the request from -> to only if it is still in from.
// It reports false when another writer got there first.
func (r *repository) UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateTransition(ctx context.Context, rec *TransitionRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *repository) ListTransitions(ctx context.Context, filter AuditFilter) ([]TransitionRecord, error) {
	db := r.db.WithContext(ctx).Model(&TransitionRecord{})
	if filter.LeaveRequestID != "" {
		db = db.Where("leave_request_id = ?", filter.LeaveRequestID)
	}
	if filter.Action != "" {
		db = db.Where("action = ?", filter.Action)
	}
	if filter.ActorID != "" {
		db = db.Where("actor_id = ?", filter.ActorID)
	}
	if filter.From != nil {
		db = db.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("occurred_at <= ?", *filter.To)
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}

	var records []TransitionRecord
	err := db.Order("occurred_at DESC").Order("id DESC").Find(&records).Error
	return records, err
}

func (r *repository) FindAllByOwner(ctx context.Context, ownerID string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindAllByManager(ctx context.Context, managerID string) ([]LeaveRequest, error) {
	reports := r.db.Table("actors").Select("id").Where("manager_id = ?", managerID)

	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("owner_id IN (?)", reports).
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

// FindExpirable pages through stale pending requests in (updated_at, id) order.
func (r *repository) FindExpirable(ctx context.Context, cutoff time.Time, after *ExpiryCursor, limit int) ([]LeaveRequest, error) {
	db := r.db.WithContext(ctx).
		Where("status IN ?", []Status{StatusSubmitted, StatusApprovedManager}).
		Where("updated_at < ?", cutoff)
	if after != nil {
		db = db.Where("(updated_at, id) > (?, ?)", after.UpdatedAt, after.ID)
	}
	db = db.Order("updated_at ASC").Order("id ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}

	var leaves []LeaveRequest
	err := db.Find(&leaves).Error
	return leaves, err
}

func (r *repository) HasOverlappingPeriod(ctx context.Context, ownerID string, startDate, endDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("owner_id = ?", ownerID).
		Where("status NOT IN ?", []Status{StatusCancelled, StatusRejected}).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate).
		Count(&count).Error
	return count > 0, err
}
