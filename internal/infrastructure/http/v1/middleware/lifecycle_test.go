package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apikit/internal/core/apperror"
	appctx "apikit/internal/core/context"
	"apikit/internal/core/security"
	"apikit/internal/infrastructure/http/v1/handlers"
	"apikit/internal/infrastructure/http/v1/middleware"
	"apikit/internal/infrastructure/http/v1/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.Lifecycle())
	r.Use(middleware.Recovery())
	r.NoRoute(middleware.NoRoute())
	return r
}

// asUser binds a user with roles to the request, standing in for Auth.
func asUser(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := appctx.WithUser(c.Request.Context(), &appctx.UserProfile{UserID: 1, Roles: appctx.NewRoleSet(roles...)})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func serve(t *testing.T, r http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func get(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}

func TestLifecycle_SuccessWrapsPlainValue(t *testing.T) {
	r := newEngine()
	r.GET("/item", handlers.Handle(func(*gin.Context) (any, error) {
		return map[string]int{"id": 5}, nil
	}))

	w, _ := serve(t, r, get("/item"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":200,"success":true,"payload":{"id":5}}`, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestLifecycle_StatusMarker(t *testing.T) {
	r := newEngine()
	r.POST("/done", handlers.Handle(func(*gin.Context) (any, error) {
		return response.StatusCode(http.StatusOK), nil
	}))

	w, _ := serve(t, r, httptest.NewRequest(http.MethodPost, "/done", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":200,"success":true}`, w.Body.String())
}

func TestLifecycle_EnvelopePassthrough(t *testing.T) {
	r := newEngine()
	r.GET("/down", handlers.Handle(func(*gin.Context) (any, error) {
		return response.FailWithPayload(http.StatusServiceUnavailable, map[string]string{"db": "down"}), nil
	}))

	w, _ := serve(t, r, get("/down"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"code":503,"success":false,"payload":{"db":"down"}}`, w.Body.String())
}

func TestLifecycle_Locale(t *testing.T) {
	r := newEngine()
	r.GET("/locale", handlers.Handle(func(c *gin.Context) (any, error) {
		return appctx.Locale(c.Request.Context()), nil
	}))

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"absent", "", "en"},
		{"blank", "   ", "en"},
		{"raw value", "vi-VN,vi;q=0.9", "vi-VN,vi;q=0.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := get("/locale")
			if tt.header != "" {
				req.Header.Set(middleware.HeaderAcceptLanguage, tt.header)
			}

			w, body := serve(t, r, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, body["payload"])
		})
	}
}

func TestLifecycle_LocaleDoesNotLeakBetweenRequests(t *testing.T) {
	r := newEngine()
	r.GET("/locale", handlers.Handle(func(c *gin.Context) (any, error) {
		return appctx.Locale(c.Request.Context()), nil
	}))

	first := get("/locale")
	first.Header.Set(middleware.HeaderAcceptLanguage, "vi")
	_, body := serve(t, r, first)
	assert.Equal(t, "vi", body["payload"])

	_, body = serve(t, r, get("/locale"))
	assert.Equal(t, "en", body["payload"])
}

func TestLifecycle_FailurePaths(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"not found", apperror.NewNotFound("user", 9), http.StatusNotFound, response.MsgNotFound},
		{"logic", apperror.NewLogic("app.x.rule"), http.StatusBadRequest, "app.x.rule"},
		{"forbidden", apperror.NewForbidden("nope"), http.StatusForbidden, response.MsgForbidden},
		{"unauthorized", apperror.ErrUnauthorized, http.StatusUnauthorized, response.MsgAuthorization},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, response.MsgUnknownError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine()
			r.GET("/fail", handlers.Handle(func(*gin.Context) (any, error) {
				return nil, tt.err
			}))

			w, body := serve(t, r, get("/fail"))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, float64(tt.wantCode), body["code"])
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestLifecycle_RequireRoleInHandler(t *testing.T) {
	r := newEngine()
	r.GET("/admin", asUser(security.RoleUser), handlers.Handle(func(c *gin.Context) (any, error) {
		if err := security.RequireRole(c.Request.Context(), security.RoleAdmin); err != nil {
			return nil, err
		}
		return "ok", nil
	}))

	w, _ := serve(t, r, get("/admin"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"code":401,"success":false,"message":"app.common.exception.AuthorizationException"}`, w.Body.String())
}

func TestRequireRoleMiddleware(t *testing.T) {
	r := newEngine()
	ok := handlers.Handle(func(*gin.Context) (any, error) { return "ok", nil })
	r.GET("/admin", asUser(security.RoleAdmin), middleware.RequireRole(security.RoleAdmin), ok)
	r.GET("/user-only", asUser(security.RoleUser), middleware.RequireRole(security.RoleAdmin), ok)
	r.GET("/anonymous", middleware.RequireRole(security.RoleUser), ok)

	w, body := serve(t, r, get("/admin"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["payload"])

	for _, path := range []string{"/user-only", "/anonymous"} {
		w, body = serve(t, r, get(path))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, response.MsgAuthorization, body["message"], path)
	}
}

func TestLifecycle_NoRoute(t *testing.T) {
	r := newEngine()

	w, body := serve(t, r, get("/api/missing"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.MsgNotFound, body["message"])
}

func TestLifecycle_Panics(t *testing.T) {
	r := newEngine()
	r.GET("/panic-error", handlers.Handle(func(*gin.Context) (any, error) {
		panic(errors.New("kaboom"))
	}))
	r.GET("/panic-value", handlers.Handle(func(*gin.Context) (any, error) {
		panic(42)
	}))

	w, body := serve(t, r, get("/panic-error"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, response.MsgServerError, body["message"])

	w, body = serve(t, r, get("/panic-value"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, response.MsgUnknownError, body["message"])
}

func TestLifecycle_ValidationFailure(t *testing.T) {
	type payload struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
	}

	r := newEngine()
	r.POST("/users", handlers.Handle(func(c *gin.Context) (any, error) {
		var p payload
		if err := handlers.BindJSON(c, &p); err != nil {
			return nil, err
		}
		return p, nil
	}))

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"email":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	w, _ := serve(t, r, req)

	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.JSONEq(t,
		`{"code":412,"success":false,"payload":{"Name":"app.validation.required","Email":"app.validation.email"}}`,
		w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	w, body := serve(t, r, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, handlers.MsgBadRequest, body["message"])
}

func TestLifecycle_HandlerWroteResponse(t *testing.T) {
	r := newEngine()
	r.GET("/raw", func(c *gin.Context) {
		c.String(http.StatusTeapot, "short and stout")
	})
	r.GET("/raw-then-fail", func(c *gin.Context) {
		c.String(http.StatusAccepted, "accepted")
		_ = c.Error(errors.New("late failure"))
	})

	w, _ := serve(t, r, get("/raw"))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "short and stout", w.Body.String())

	w, _ = serve(t, r, get("/raw-then-fail"))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "accepted", w.Body.String())
}
