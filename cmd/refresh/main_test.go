package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nba_props/refresh/internal/config"
)

func TestRun_MissingAPIKeyMakesNoRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	t.Setenv("ODDS_API_KEY", "")
	t.Setenv("ODDS_API_BASE_URL", srv.URL)

	var stdout, stderr bytes.Buffer
	code := run(nil, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "ODDS_API_KEY")
	assert.Empty(t, stdout.String())
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestRun_InvalidLogLevel(t *testing.T) {
	t.Setenv("ODDS_API_KEY", "secret")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--log-level", "LOUD"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "LOG_LEVEL")
	assert.Contains(t, stderr.String(), "WARNING")
}

func TestRun_MissingArtifactsExitNonZero(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	dir := t.TempDir()
	t.Setenv("ODDS_API_KEY", "secret")
	t.Setenv("ODDS_API_BASE_URL", srv.URL)
	t.Setenv("MODEL_PATH", filepath.Join(dir, "pts.json"))
	t.Setenv("APP_ENV", "production")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--log-level", "ERROR"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "refresh failed")
	assert.Contains(t, stderr.String(), "data_file/missing")
	assert.Contains(t, stderr.String(), `"retryable":false`)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestBuildSinks_NoneConfigured(t *testing.T) {
	cfg := &config.Config{RedisURL: "", TelegramBotToken: ""}
	require.False(t, cfg.NotifyEnabled())

	sinks, closeSinks := buildSinks(context.Background(), cfg, zerolog.Nop())
	defer closeSinks()

	assert.Zero(t, sinks.Len())
}

func TestBuildSinks_UnreachableRedisIsSkipped(t *testing.T) {
	cfg := &config.Config{RedisURL: "redis://127.0.0.1:1/0", RedisChannel: "nba_props:edges"}
	require.True(t, cfg.NotifyEnabled())

	sinks, closeSinks := buildSinks(context.Background(), cfg, zerolog.Nop())
	defer closeSinks()

	assert.Zero(t, sinks.Len())
}
