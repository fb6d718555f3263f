package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservedai/venuescout/internal/config"
	"github.com/reservedai/venuescout/internal/recommend"
)

func startTestServer(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Security: config.SecurityConfig{Mode: "development"},
	}
	handlers := NewAPIHandlers(&stubEngine{result: &recommend.Result{RunID: "run-1"}})

	addr, err := Start(ctx, cfg, handlers)
	require.NoError(t, err)
	return "http://" + addr
}

func TestHealthEndpoint(t *testing.T) {
	base := startTestServer(t)

	resp, err := http.Get(base + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"status":"healthy"`)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestRecommendationsRoute(t *testing.T) {
	base := startTestServer(t)

	resp, err := http.Post(base+"/api/recommendations", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/api/recommendations")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestInquiriesRouteUnconfigured(t *testing.T) {
	base := startTestServer(t)

	resp, err := http.Post(base+"/api/inquiries", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
