package rbac

import (
	"net/http"

	"go-leave/internal/middleware"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// MyPermissions lists what the current actor's role may do.
func (h *Handler) MyPermissions(c *gin.Context) {
	a, ok := middleware.CurrentActor(c)
	if !ok {
		httpErr := apperror.ToHTTP(apperror.ErrUnauthorized)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, PermissionsResponse{
		Role:        string(a.Role),
		Permissions: h.service.Permissions(string(a.Role)),
	}, nil)
}
