package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dxsim/internal/config"
	"dxsim/internal/container"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_MountsEverything(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.LogLevel = "ERROR"
	c, err := container.New(cfg)
	require.NoError(t, err)

	app, err := NewApp(c)
	require.NoError(t, err)
	h := app.Handler()

	body := `{"population":{"size":400,"conditions":{"flu":0.25}},"test_condition":"flu","sensitivity":0.9,"specificity":0.9,"seed":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/simulations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `dxsim_runs_total{condition="flu"} 1`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
