package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"dinereserve/internal/domain/entity"
	"dinereserve/internal/infrastructure/metrics"
	"dinereserve/internal/infrastructure/ratelimit"
	"dinereserve/pkg/errors"
	"dinereserve/pkg/logger"
)

type staticVerifier map[string]string

func (v staticVerifier) VerifyToken(_ context.Context, token string) (string, error) {
	uid, ok := v[token]
	if !ok {
		return "", errors.Unauthorized("unknown token", nil)
	}
	return uid, nil
}

type users map[string]entity.User

func (u users) GetByID(_ context.Context, id string) (*entity.User, error) {
	user, ok := u[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return &user, nil
}

func ok(c echo.Context) error {
	return c.String(http.StatusOK, c.Get("uid").(string))
}

func run(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	e := echo.New()
	auth := NewAuthMiddleware(staticVerifier{"good": "user-1"})
	e.GET("/me", ok, auth.Authenticate)

	assert.Equal(t, http.StatusUnauthorized, run(e, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, run(e, http.MethodGet, "/me", "Token good").Code)
	assert.Equal(t, http.StatusUnauthorized, run(e, http.MethodGet, "/me", "Bearer bad").Code)

	rec := run(e, http.MethodGet, "/me", "Bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestAdminOnly(t *testing.T) {
	e := echo.New()
	auth := NewAuthMiddleware(staticVerifier{"admin": "a", "guest": "g", "ghost": "nobody"})
	admin := NewAdminMiddleware(users{
		"a": {ID: "a", Role: entity.RoleAdmin},
		"g": {ID: "g", Role: entity.RoleGuest},
	})
	e.GET("/admin", ok, auth.Authenticate, admin.AdminOnly)

	assert.Equal(t, http.StatusOK, run(e, http.MethodGet, "/admin", "Bearer admin").Code)
	assert.Equal(t, http.StatusForbidden, run(e, http.MethodGet, "/admin", "Bearer guest").Code)
	assert.Equal(t, http.StatusForbidden, run(e, http.MethodGet, "/admin", "Bearer ghost").Code)
}

func TestRateLimit_PerCaller(t *testing.T) {
	e := echo.New()
	auth := NewAuthMiddleware(staticVerifier{"one": "u1", "two": "u2"})
	limiter := ratelimit.NewRateLimiter(ratelimit.Policy{PerMinute: 1, Burst: 1}, nil)
	e.POST("/things", ok, auth.Authenticate, RateLimit(limiter, "things"))

	assert.Equal(t, http.StatusOK, run(e, http.MethodPost, "/things", "Bearer one").Code)

	rec := run(e, http.MethodPost, "/things", "Bearer one")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, run(e, http.MethodPost, "/things", "Bearer two").Code)
}

func TestRequestObserver(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	e := echo.New()
	e.Use(RequestObserver())
	e.GET("/items/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	before := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/items/:id", http.MethodGet, "204"))
	rec := run(e, http.MethodGet, "/items/42", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	after := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/items/:id", http.MethodGet, "204"))
	assert.Equal(t, before+1, after)
	assert.Contains(t, buf.String(), `"route":"/items/:id"`)
	assert.Contains(t, buf.String(), `"status":204`)
}
