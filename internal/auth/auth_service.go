package auth

import (
	"context"
	"errors"
	"strings"

	"go-leave/internal/actor"
	autherrors "go-leave/internal/auth/errors"
	"go-leave/internal/auth/token"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ActorDirectory is the subset of the actor service auth needs.
type ActorDirectory interface {
	GetByID(ctx context.Context, id string) (actor.Actor, error)
}

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, resp AuthResponse, err error)

	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)

	GetMe(ctx context.Context, userID string) (*AuthResponse, error)

	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
}

type service struct {
	repo      Repository
	directory ActorDirectory
	tokens    *token.Manager
	logger    *zap.Logger
}

func NewService(repo Repository, directory ActorDirectory, tokens *token.Manager, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{repo: repo, directory: directory, tokens: tokens, logger: l}
}

func (s *service) Login(ctx context.Context, email, password string) (string, string, AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		s.logger.Info("login unknown email")
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login wrong password", zap.String("user_id", user.ID.String()))
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	claims, err := s.tokens.Parse(refreshToken, token.TypeRefresh)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidUserID
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrUserNotFound
	}

	return s.issue(ctx, user)
}

func (s *service) issue(ctx context.Context, user *UserAccount) (string, string, AuthResponse, error) {
	if !user.IsActive {
		return "", "", AuthResponse{}, autherrors.ErrUserInactive
	}

	resp, err := s.describe(ctx, user)
	if err != nil {
		return "", "", AuthResponse{}, err
	}

	access, refresh, err := s.tokens.IssuePair(user.ID.String(), user.ActorID.String())
	if err != nil {
		s.logger.Error("token generation failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("tokens issued", zap.String("user_id", user.ID.String()), zap.String("role", resp.Role))
	return access, refresh, resp, nil
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, autherrors.ErrInvalidUserID
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, autherrors.ErrUserNotFound
	}

	resp, err := s.describe(ctx, u)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	actorID, err := uuid.Parse(req.ActorID)
	if err != nil {
		return AuthResponse{}, autherrors.ErrUnknownActor
	}
	if _, err := s.directory.GetByID(ctx, actorID.String()); err != nil {
		return AuthResponse{}, autherrors.ErrUnknownActor
	}

	user := &UserAccount{
		ID:           uuid.New(),
		ActorID:      actorID,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hashed),
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
		}
		return AuthResponse{}, err
	}

	return s.describe(ctx, user)
}

// describe joins the account with its actor so role and manager are current.
func (s *service) describe(ctx context.Context, user *UserAccount) (AuthResponse, error) {
	a, err := s.directory.GetByID(ctx, user.ActorID.String())
	if err != nil {
		s.logger.Warn("account actor lookup failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		return AuthResponse{}, autherrors.ErrUnknownActor
	}

	resp := AuthResponse{
		ID:         user.ID.String(),
		EmployeeID: a.ID.String(),
		Email:      user.Email,
		Name:       a.FullName,
		Role:       string(a.Role),
	}
	if a.ManagerID != nil {
		v := a.ManagerID.String()
		resp.ManagerID = &v
	}
	return resp, nil
}
