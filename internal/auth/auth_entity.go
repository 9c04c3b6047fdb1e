package auth

import (
	"time"

	"github.com/google/uuid"
)

// UserAccount holds login credentials for one actor.
type UserAccount struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ActorID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	IsActive     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserAccount) TableName() string {
	return "user_accounts"
}
