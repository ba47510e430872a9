package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/progress-engine/internal/platform/logger"
)

func sqliteConfig(t *testing.T) Config {
	t.Helper()
	t.Setenv("PROGRESS_CONFIG_FILE", "")
	t.Setenv("THEORY_POLICY", "")
	t.Setenv("STORE_DRIVER", StoreSQLite)
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "progress.db"))
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("JWT_SECRET_KEY", "app-test-secret")
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	return cfg
}

func TestNew_SQLiteWiring(t *testing.T) {
	a, err := New(context.Background(), logger.Nop(), sqliteConfig(t))
	require.NoError(t, err)
	defer a.Close()

	rec := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ov, err := a.Services.Analytics.GetOverview(context.Background())
	require.NoError(t, err)
	assert.Zero(t, ov.TotalLessons)
}

func TestNew_RequiresSecret(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.JWTSecret = ""
	_, err := New(context.Background(), logger.Nop(), cfg)
	assert.Error(t, err)
}
