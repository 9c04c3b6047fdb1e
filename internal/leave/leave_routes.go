package leave

import (
	"go-leave/internal/auth/token"
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type RouteDeps struct {
	Tokens        *token.Manager
	Directory     middleware.ActorDirectory
	RBAC          middleware.RBACService
	Redis         *redis.Client
	CreateLimiter *middleware.KeyedRateLimiter
}

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, deps RouteDeps) {
	authed := []gin.HandlerFunc{
		middleware.AuthMiddleware(deps.Tokens),
		middleware.ResolveActor(deps.Directory),
	}

	transitions := []gin.HandlerFunc{}
	if deps.Redis != nil {
		transitions = append(transitions, middleware.Idempotency(deps.Redis))
	}
	guard := func(action string, h gin.HandlerFunc) []gin.HandlerFunc {
		chain := append([]gin.HandlerFunc{middleware.RBACAuthorize(deps.RBAC, "leave", action)}, transitions...)
		return append(chain, h)
	}

	leaves := r.Group("/leave-requests")
	leaves.Use(authed...)
	{
		create := []gin.HandlerFunc{middleware.RBACAuthorize(deps.RBAC, "leave", "create")}
		if deps.CreateLimiter != nil {
			create = append(create, middleware.RateLimitByActor(deps.CreateLimiter))
		}
		leaves.POST("", append(create, handler.Create)...)
		leaves.GET("", middleware.RBACAuthorize(deps.RBAC, "leave", "read"), handler.GetAll)
		leaves.GET("/:id", middleware.RBACAuthorize(deps.RBAC, "leave", "read"), handler.GetByID)
		leaves.POST("/:id/submit", guard("submit", handler.Submit)...)
		leaves.POST("/:id/approve", guard("approve", handler.Approve)...)
		leaves.POST("/:id/reject", guard("reject", handler.Reject)...)
		leaves.POST("/:id/cancel", guard("cancel", handler.Cancel)...)
	}

	// Not role-gated: non-HR callers get an empty log rather than a 403.
	audit := r.Group("/audit-log")
	audit.Use(authed...)
	{
		audit.GET("", handler.AuditLog)
		audit.GET("/export", handler.ExportAuditLog)
	}
}
