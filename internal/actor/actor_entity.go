package actor

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleHR       Role = "HR"
)

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleHR:
		return true
	default:
		return false
	}
}

// Actor is an identity owned by the directory. The leave engine only reads it.
type Actor struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Email     string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Role      Role       `gorm:"type:varchar(20);not null;default:'EMPLOYEE'" json:"role"`
	ManagerID *uuid.UUID `gorm:"type:uuid;index" json:"manager_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Actor) TableName() string {
	return "actors"
}

// Manages reports whether a is the direct manager of other.
func (a Actor) Manages(other Actor) bool {
	return other.ManagerID != nil && *other.ManagerID == a.ID
}
