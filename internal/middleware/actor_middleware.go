package middleware

import (
	"context"

	"go-leave/internal/actor"
	autherrors "go-leave/internal/auth/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ContextActor = "actor"

type ActorDirectory interface {
	GetByID(ctx context.Context, id string) (actor.Actor, error)
}

// ResolveActor loads the authenticated actor from the directory. The role
// used for every decision downstream comes from here, not from the token.
func ResolveActor(directory ActorDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID := c.GetString(ContextEmployeeID)
		if employeeID == "" {
			abortWith(c, apperror.ErrUnauthorized)
			return
		}

		a, err := directory.GetByID(c.Request.Context(), employeeID)
		if err != nil {
			if apperror.HasCode(err, apperror.CodeNotFound) || apperror.HasCode(err, apperror.CodeInvalidInput) {
				abortWith(c, autherrors.ErrUnknownActor)
				return
			}
			abortWith(c, err)
			return
		}

		ctx := contextutil.WithActorID(c.Request.Context(), a.ID.String())
		logger := contextutil.GetLogger(ctx, zap.L()).With(
			zap.String("actor_id", a.ID.String()),
			zap.String("role", string(a.Role)),
		)
		ctx = contextutil.WithLogger(ctx, logger)
		c.Request = c.Request.WithContext(ctx)

		c.Set(ContextActor, a)
		c.Next()
	}
}

// CurrentActor returns the actor set by ResolveActor.
func CurrentActor(c *gin.Context) (actor.Actor, bool) {
	v, ok := c.Get(ContextActor)
	if !ok {
		return actor.Actor{}, false
	}
	a, ok := v.(actor.Actor)
	return a, ok
}
