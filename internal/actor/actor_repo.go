package actor

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=actor_repo.go -destination=mock/actor_repo_mock.go -package=mock
type Repository interface {
	FindByID(ctx context.Context, id string) (*Actor, error)
	FindByManagerID(ctx context.Context, managerID string) ([]Actor, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id string) (*Actor, error) {
	var a Actor
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindByManagerID(ctx context.Context, managerID string) ([]Actor, error) {
	var actors []Actor
	err := r.db.WithContext(ctx).
		Where("manager_id = ?", managerID).
		Order("full_name ASC").
		Find(&actors).Error
	return actors, err
}
