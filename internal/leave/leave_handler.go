package leave

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go-leave/internal/actor"
	"go-leave/internal/middleware"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) currentActor(c *gin.Context) (actor.Actor, bool) {
	a, ok := middleware.CurrentActor(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
	}
	return a, ok
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 {
		pageSize = 10
	}
	return page, pageSize
}

func (h *Handler) Create(c *gin.Context) {
	a, ok := h.currentActor(c)
	if !ok {
		return
	}
	h.logger.Debug("http create leave", zap.String("actor_id", a.ID.String()))

	var req CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http create leave validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.CreateDraft(c.Request.Context(), a, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	a, ok := h.currentActor(c)
	if !ok {
		return
	}

	resp, err := h.service.ListVisible(c.Request.Context(), a)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, pageSize := pageParams(c)
	start, end := response.Paginate(len(resp), page, pageSize)
	meta := response.NewPaginationMeta(int64(len(resp)), page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) GetByID(c *gin.Context) {
	a, ok := h.currentActor(c)
	if !ok {
		return
	}

	resp, err := h.service.GetVisible(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

type transitionFunc func(c *gin.Context, a actor.Actor, id string) (LeaveResponse, error)

func (h *Handler) transition(fn transitionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := h.currentActor(c)
		if !ok {
			return
		}

		resp, err := fn(c, a, c.Param("id"))
		if err != nil {
			h.writeServiceError(c, err)
			return
		}

		response.Success(c, http.StatusOK, resp, nil)
	}
}

func (h *Handler) Submit(c *gin.Context) {
	h.transition(func(c *gin.Context, a actor.Actor, id string) (LeaveResponse, error) {
		return h.service.Submit(c.Request.Context(), a, id)
	})(c)
}

func (h *Handler) Approve(c *gin.Context) {
	h.transition(func(c *gin.Context, a actor.Actor, id string) (LeaveResponse, error) {
		return h.service.Approve(c.Request.Context(), a, id)
	})(c)
}

func (h *Handler) Reject(c *gin.Context) {
	h.transition(func(c *gin.Context, a actor.Actor, id string) (LeaveResponse, error) {
		return h.service.Reject(c.Request.Context(), a, id)
	})(c)
}

func (h *Handler) Cancel(c *gin.Context) {
	h.transition(func(c *gin.Context, a actor.Actor, id string) (LeaveResponse, error) {
		return h.service.Cancel(c.Request.Context(), a, id)
	})(c)
}

func (h *Handler) bindAuditFilter(c *gin.Context) (AuditFilter, error) {
	var q AuditLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return AuditFilter{}, apperror.MapValidationError(err)
	}

	filter := AuditFilter{
		LeaveRequestID: q.LeaveRequestID,
		Action:         Action(q.Action),
		ActorID:        q.ActorID,
		Limit:          q.Limit,
	}
	if q.From != "" {
		from, err := parseQueryTime(q.From, false)
		if err != nil {
			return AuditFilter{}, apperror.InvalidField("From")
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := parseQueryTime(q.To, true)
		if err != nil {
			return AuditFilter{}, apperror.InvalidField("To")
		}
		filter.To = &to
	}
	return filter, nil
}

// parseQueryTime accepts RFC3339 or a plain date. A plain upper bound covers
// the whole day.
func parseQueryTime(v string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func (h *Handler) AuditLog(c *gin.Context) {
	a, ok := h.currentActor(c)
	if !ok {
		return
	}

	filter, err := h.bindAuditFilter(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.ListAuditLog(c.Request.Context(), a, filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, pageSize := pageParams(c)
	start, end := response.Paginate(len(resp), page, pageSize)
	meta := response.NewPaginationMeta(int64(len(resp)), page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) ExportAuditLog(c *gin.Context) {
	a, ok := h.currentActor(c)
	if !ok {
		return
	}

	filter, err := h.bindAuditFilter(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	records, err := h.service.ListAuditLog(c.Request.Context(), a, filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	f, err := WriteAuditWorkbook(records)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("leave-audit-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("audit export write failed", zap.Error(err))
	}
}
