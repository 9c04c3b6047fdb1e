package rbac

import (
	"go-leave/internal/auth/token"
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, tokens *token.Manager, directory middleware.ActorDirectory) {
	group := r.Group("/rbac")
	group.Use(middleware.AuthMiddleware(tokens), middleware.ResolveActor(directory))
	{
		group.GET("/me", handler.MyPermissions)
	}
}
