package middleware

import (
	"strings"

	autherrors "go-leave/internal/auth/errors"
	"go-leave/internal/auth/token"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID     = "user_id"
	ContextEmployeeID = "employee_id"
)

func abortWith(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
	c.Abort()
}

// AuthMiddleware accepts a bearer token or the access_token cookie.
func AuthMiddleware(tokens *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWith(c, autherrors.ErrTokenNotFound)
			return
		}

		claims, err := tokens.Parse(tokenString, token.TypeAccess)
		if err != nil {
			abortWith(c, err)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmployeeID, claims.EmployeeID)

		c.Next()
	}
}
