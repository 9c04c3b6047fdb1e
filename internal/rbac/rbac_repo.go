package rbac

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RolePermission struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Role     string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_role_permission"`
	Resource string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_role_permission"`
	Action   string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_role_permission"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

const (
	ResourceLeave = "leave"
	ResourceAudit = "audit"
)

// DefaultPermissions is the baseline policy seeded on first start.
func DefaultPermissions() []RolePermission {
	grants := map[string][][2]string{
		"EMPLOYEE": {
			{ResourceLeave, "create"},
			{ResourceLeave, "read"},
			{ResourceLeave, "submit"},
			{ResourceLeave, "cancel"},
		},
		"MANAGER": {
			{ResourceLeave, "read"},
			{ResourceLeave, "approve"},
			{ResourceLeave, "reject"},
		},
		"HR": {
			{ResourceLeave, "read"},
			{ResourceLeave, "approve"},
			{ResourceLeave, "reject"},
			{ResourceAudit, "read"},
			{ResourceAudit, "export"},
		},
	}

	var perms []RolePermission
	for _, role := range []string{"EMPLOYEE", "MANAGER", "HR"} {
		for _, g := range grants[role] {
			perms = append(perms, RolePermission{Role: role, Resource: g[0], Action: g[1]})
		}
	}
	return perms
}

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	ListRolePermissions(ctx context.Context) ([]RolePermission, error)
	SeedDefaults(ctx context.Context, perms []RolePermission) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListRolePermissions(ctx context.Context) ([]RolePermission, error) {
	var rows []RolePermission
	err := r.db.WithContext(ctx).
		Order("role ASC, resource ASC, action ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) SeedDefaults(ctx context.Context, perms []RolePermission) error {
	if len(perms) == 0 {
		return nil
	}
	rows := make([]RolePermission, len(perms))
	for i, p := range perms {
		p.ID = uuid.New()
		rows[i] = p
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}
