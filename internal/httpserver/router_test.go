package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(ctx context.Context) error {
	return p.err
}

func serve(t *testing.T, db Pinger, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := NewRouter(Handlers{}, "test-secret", zap.NewNop(), db)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.Engine.ServeHTTP(rec, req)
	return rec
}

func TestHealthzAlwaysOK(t *testing.T) {
	rec := serve(t, fakePinger{}, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReflectsDatabase(t *testing.T) {
	rec := serve(t, fakePinger{}, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, fakePinger{err: errors.New("connection refused")}, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "db_not_ready")
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	rec := serve(t, fakePinger{}, http.MethodGet, "/profile")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
