package server

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/sealjohn/internal/config"
	"github.com/dropDatabas3/sealjohn/internal/crypto"
)

func testConfig() *config.Config {
	var c config.Config
	c.App.Version = "test"
	c.Security.MasterKey = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	c.Security.RotationInterval = "1h"
	c.Security.Argon2.MemoryKiB = 64
	c.Security.Argon2.Time = 1
	c.Security.Argon2.Parallelism = 1
	c.Security.Argon2.KeyLen = 32
	c.Rate.Enabled = true
	c.Rate.Kind = "memory"
	c.Rate.Window = "1m"
	c.Rate.MaxRequests = 100
	c.Metrics.Enabled = true
	return &c
}

func TestBuild_ServesMetricsAndReady(t *testing.T) {
	app, err := Build(context.Background(), testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	srv := httptest.NewServer(app.Handler)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/crypto/hash", "application/json", strings.NewReader(`{"data":"hello"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "crypto_operations_total")
	assert.Contains(t, string(body), "http_requests_total")

	resp, err = http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBuild_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	app, err := Build(context.Background(), cfg)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuild_InvalidMasterKey(t *testing.T) {
	cfg := testConfig()
	cfg.Security.MasterKey = "too-short"
	_, err := Build(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, crypto.ErrCryptoInit)
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.ReadTimeout = "5s"
	cfg.Server.WriteTimeout = "5s"
	app, err := Build(context.Background(), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, app) }()
	cancel()
	assert.NoError(t, <-done)
}
