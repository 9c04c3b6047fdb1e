package rbac

import (
	"context"
	"sort"
	"sync"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Reload(ctx context.Context) error
	Enforce(role, resource, action string) (bool, error)
	Permissions(role string) []string
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	byRole   map[string][]string
	mu       sync.RWMutex
	logger   *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		byRole:   map[string][]string{},
		logger:   l,
	}
}

// Reload replaces the in-memory policy with the stored one, falling back to
// DefaultPermissions when the store is empty.
func (s *service) Reload(ctx context.Context) error {
	perms, err := s.repo.ListRolePermissions(ctx)
	if err != nil {
		return err
	}
	if len(perms) == 0 {
		perms = DefaultPermissions()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()
	byRole := map[string][]string{}
	for _, p := range perms {
		if _, err := s.enforcer.AddPolicy(p.Role, p.Resource, p.Action); err != nil {
			return err
		}
		byRole[p.Role] = append(byRole[p.Role], p.Resource+":"+p.Action)
	}
	for role := range byRole {
		sort.Strings(byRole[role])
	}
	s.byRole = byRole

	s.logger.Info("rbac policy loaded", zap.Int("rules", len(perms)), zap.Int("roles", len(byRole)))
	return nil
}

func (s *service) Enforce(role, resource, action string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.enforcer.Enforce(role, resource, action)
}

func (s *service) Permissions(role string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.byRole[role]))
	copy(out, s.byRole[role])
	return out
}
