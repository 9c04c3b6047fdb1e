package actor

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	actorerrors "go-leave/internal/actor/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	CacheKeyPrefix  = "actors:"
	DefaultCacheTTL = time.Minute
)

func CacheKey(id string) string {
	return CacheKeyPrefix + id
}

//go:generate mockgen -source=actor_service.go -destination=mock/actor_service_mock.go -package=mock
type Service interface {
	GetByID(ctx context.Context, id string) (Actor, error)
	ListDirectReports(ctx context.Context, managerID string) ([]Actor, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	ttl    time.Duration
	sf     *singleflight.Group
	logger *zap.Logger
}

// NewService builds the directory lookup. rdb may be nil, which disables the
// read-through cache.
func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("actor.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("actor.service")
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		ttl:    DefaultCacheTTL,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) GetByID(ctx context.Context, id string) (Actor, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Actor{}, actorerrors.ErrInvalidActorID
	}

	key := CacheKey(id)
	if a, ok := s.fromCache(ctx, key); ok {
		return a, nil
	}

	v, err, shared := s.sf.Do(key, func() (any, error) {
		a, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		s.toCache(ctx, key, *a)
		return *a, nil
	})
	if err != nil {
		return Actor{}, err
	}
	if shared {
		s.logger.Debug("actor lookup collapsed", zap.String("actor_id", id))
	}
	return v.(Actor), nil
}

func (s *service) ListDirectReports(ctx context.Context, managerID string) ([]Actor, error) {
	if _, err := uuid.Parse(managerID); err != nil {
		return nil, actorerrors.ErrInvalidActorID
	}
	return s.repo.FindByManagerID(ctx, managerID)
}

func (s *service) fromCache(ctx context.Context, key string) (Actor, bool) {
	if s.rdb == nil {
		return Actor{}, false
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("actor cache read failed", zap.String("key", key), zap.Error(err))
		}
		return Actor{}, false
	}
	var a Actor
	if err := json.Unmarshal(raw, &a); err != nil {
		s.logger.Warn("actor cache decode failed", zap.String("key", key), zap.Error(err))
		return Actor{}, false
	}
	return a, true
}

func (s *service) toCache(ctx context.Context, key string, a Actor) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("actor cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return actorerrors.ErrActorNotFound
	}
	return err
}
