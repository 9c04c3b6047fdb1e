package app

import (
	"context"
	"time"

	"go-leave/internal/actor"
	"go-leave/internal/auth"
	"go-leave/internal/auth/token"
	"go-leave/internal/leave"
	"go-leave/internal/lock"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"
	"go-leave/internal/rbac/infra"
	"go-leave/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// leaveDeps is the engine wiring shared by the API and the worker, so both
// serialize on the same locks and write the same outbox.
type leaveDeps struct {
	repo      leave.Repository
	directory actor.Service
	service   leave.Service
}

func buildLeave(i *Infra) leaveDeps {
	cfg := i.Config
	actorService := actor.NewService(actor.NewRepository(i.GormDB), i.Redis, i.Logger)
	leaveRepo := leave.NewRepository(i.GormDB)

	var locker lock.Locker = lock.NewMemoryLocker(cfg.LockWait)
	if i.Redis != nil {
		opts := lock.DefaultOptions()
		opts.Wait = cfg.LockWait
		opts.TTL = cfg.LockTTL
		locker = lock.NewRedisLocker(i.Redis, opts, lock.WithLogger(i.Logger))
	}

	svc := leave.NewService(
		i.SQLDB,
		leaveRepo,
		counter.NewRepository(i.GormDB),
		actorService,
		leave.WithExpirationThreshold(cfg.ExpirationThreshold),
		leave.WithLocker(locker),
		leave.WithOutbox(kafka.NewOutboxRepository(i.SQLDB)),
		leave.WithLogger(i.Logger),
	)

	return leaveDeps{repo: leaveRepo, directory: actorService, service: svc}
}

// createLimiter turns a per-day quota into a token bucket that refills one
// draft every 24h/n.
func createLimiter(perDay int) *middleware.KeyedRateLimiter {
	if perDay <= 0 {
		return nil
	}
	return middleware.NewKeyedRateLimiter(rate.Every(24*time.Hour/time.Duration(perDay)), perDay)
}

func registerModules(ctx context.Context, router *gin.Engine, i *Infra) error {
	cfg := i.Config

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(cfg.RBACModelPath)
	if err != nil {
		return err
	}
	rbacRepo := rbac.NewRepository(i.GormDB)
	if err := rbacRepo.SeedDefaults(ctx, rbac.DefaultPermissions()); err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, i.Logger)
	if err := rbacService.Reload(ctx); err != nil {
		return err
	}

	// --- Services ---
	tokens := token.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	deps := buildLeave(i)
	authService := auth.NewService(auth.NewRepository(i.GormDB), deps.directory, tokens, i.Logger)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, cfg.SecureCookies, i.Logger)
	leaveHandler := leave.NewHandler(deps.service, i.Logger)
	rbacHandler := rbac.NewHandler(rbacService)

	router.Use(middleware.RequestID(), middleware.ContextLogger(i.Logger))

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, tokens)
		leave.RegisterRoutes(api, leaveHandler, leave.RouteDeps{
			Tokens:        tokens,
			Directory:     deps.directory,
			RBAC:          rbacService,
			Redis:         i.Redis,
			CreateLimiter: createLimiter(cfg.CreateRatePerDay),
		})
		rbac.RegisterRoutes(api, rbacHandler, tokens, deps.directory)
	}

	i.Logger.Info("modules registered")
	return nil
}

// BuildApp migrates (when enabled) and mounts every module on router.
func BuildApp(ctx context.Context, router *gin.Engine, i *Infra) error {
	if i.Config.AutoMigrate {
		if err := Migrate(ctx, i.GormDB); err != nil {
			return err
		}
		i.Logger.Info("schema migrated")
	}
	if err := registerModules(ctx, router, i); err != nil {
		i.Logger.Error("register modules failed", zap.Error(err))
		return err
	}
	return nil
}
