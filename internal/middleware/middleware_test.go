package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-leave/internal/actor"
	actorerrors "go-leave/internal/actor/errors"
	"go-leave/internal/auth/token"
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeDirectory struct {
	getByIDFn func(ctx context.Context, id string) (actor.Actor, error)
}

func (f *fakeDirectory) GetByID(ctx context.Context, id string) (actor.Actor, error) {
	return f.getByIDFn(ctx, id)
}

type fakeRBAC struct {
	enforceFn func(role, resource, action string) (bool, error)
}

func (f *fakeRBAC) Enforce(role, resource, action string) (bool, error) {
	return f.enforceFn(role, resource, action)
}

func withActor(a actor.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextEmployeeID, a.ID.String())
		c.Set(middleware.ContextActor, a)
		c.Next()
	}
}

func TestAuthMiddleware(t *testing.T) {
	tokens := token.NewManager("secret", time.Minute, time.Hour)
	access, refresh, err := tokens.IssuePair("user-1", "emp-1")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/p", middleware.AuthMiddleware(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middleware.ContextUserID)+"|"+c.GetString(middleware.ContextEmployeeID))
	})

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-1|emp-1", w.Body.String())
	})

	t.Run("cookie token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: access})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh token is refused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestResolveActor(t *testing.T) {
	hr := actor.Actor{ID: uuid.New(), Role: actor.RoleHR}

	newRouter := func(dir middleware.ActorDirectory, employeeID string) *gin.Engine {
		router := gin.New()
		router.GET("/p", func(c *gin.Context) {
			if employeeID != "" {
				c.Set(middleware.ContextEmployeeID, employeeID)
			}
			c.Next()
		}, middleware.ResolveActor(dir), func(c *gin.Context) {
			a, ok := middleware.CurrentActor(c)
			assert.True(t, ok)
			c.String(http.StatusOK, string(a.Role))
		})
		return router
	}

	t.Run("role comes from the directory", func(t *testing.T) {
		dir := &fakeDirectory{getByIDFn: func(_ context.Context, id string) (actor.Actor, error) {
			assert.Equal(t, hr.ID.String(), id)
			return hr, nil
		}}
		w := httptest.NewRecorder()
		newRouter(dir, hr.ID.String()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "HR", w.Body.String())
	})

	t.Run("unknown actor", func(t *testing.T) {
		dir := &fakeDirectory{getByIDFn: func(context.Context, string) (actor.Actor, error) {
			return actor.Actor{}, actorerrors.ErrActorNotFound
		}}
		w := httptest.NewRecorder()
		newRouter(dir, uuid.NewString()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("directory down", func(t *testing.T) {
		dir := &fakeDirectory{getByIDFn: func(context.Context, string) (actor.Actor, error) {
			return actor.Actor{}, errors.New("db down")
		}}
		w := httptest.NewRecorder()
		newRouter(dir, uuid.NewString()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("no identity", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(&fakeDirectory{}, "").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRBACAuthorize(t *testing.T) {
	rbac := &fakeRBAC{enforceFn: func(role, resource, action string) (bool, error) {
		return role == "HR" && resource == "leave" && action == "approve", nil
	}}

	run := func(a actor.Actor) int {
		router := gin.New()
		router.POST("/p", withActor(a), middleware.RBACAuthorize(rbac, "leave", "approve"), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/p", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, run(actor.Actor{ID: uuid.New(), Role: actor.RoleHR}))
	assert.Equal(t, http.StatusForbidden, run(actor.Actor{ID: uuid.New(), Role: actor.RoleEmployee}))
}

func TestRateLimitByActor(t *testing.T) {
	limiter := middleware.NewKeyedRateLimiter(rate.Every(8*time.Hour), 3)
	alice := actor.Actor{ID: uuid.New(), Role: actor.RoleEmployee}
	bob := actor.Actor{ID: uuid.New(), Role: actor.RoleEmployee}

	run := func(a actor.Actor) int {
		router := gin.New()
		router.POST("/p", withActor(a), middleware.RateLimitByActor(limiter), func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/p", nil))
		return w.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusCreated, run(alice))
	}
	assert.Equal(t, http.StatusTooManyRequests, run(alice))
	assert.Equal(t, http.StatusCreated, run(bob))
}

func TestIdempotency(t *testing.T) {
	a := actor.Actor{ID: uuid.New(), Role: actor.RoleManager}
	path := "/leave-requests/:id/approve"
	cacheKey := middleware.IdempotencyCacheKey(path, a.ID.String(), "key-1")
	stored := `{"status":200,"body":{"ok":true}}`

	newRouter := func(t *testing.T, calls *int) (*gin.Engine, redismock.ClientMock) {
		rdb, mock := redismock.NewClientMock()
		router := gin.New()
		router.POST(path, withActor(a), middleware.Idempotency(rdb), func(c *gin.Context) {
			*calls++
			c.Data(http.StatusOK, "application/json", []byte(`{"ok":true}`))
		})
		return router, mock
	}

	request := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/leave-requests/abc/approve", nil)
		req.Header.Set(middleware.IdempotencyHeader, "key-1")
		return req
	}

	t.Run("first call runs handler and stores response", func(t *testing.T) {
		calls := 0
		router, mock := newRouter(t, &calls)
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(true)
		mock.ExpectSet(cacheKey, []byte(stored), middleware.IdempotencyTTL).SetVal("OK")
		mock.ExpectDel(cacheKey + ":lock").SetVal(1)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, request())

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replay skips handler", func(t *testing.T) {
		calls := 0
		router, mock := newRouter(t, &calls)
		mock.ExpectGet(cacheKey).SetVal(stored)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, request())

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, calls)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
	})

	t.Run("in-flight duplicate is rejected", func(t *testing.T) {
		calls := 0
		router, mock := newRouter(t, &calls)
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(false)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, request())

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, 0, calls)
	})

	t.Run("no header passes through", func(t *testing.T) {
		calls := 0
		router, _ := newRouter(t, &calls)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/leave-requests/abc/approve", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, calls)
	})
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.GET("/p", middleware.RequestID(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("X-Request-ID", "rid-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "rid-1", w.Body.String())
	assert.Equal(t, "rid-1", w.Header().Get("X-Request-ID"))
}
