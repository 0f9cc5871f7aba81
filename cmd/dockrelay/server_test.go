package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	self, err := os.Executable()
	require.NoError(t, err)
	return &Config{
		Server:   ServerConfig{Transport: TransportHTTP, Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second},
		Docker:   DockerConfig{Binary: self, ProbeTimeout: time.Second},
		Projects: ProjectsConfig{Dir: t.TempDir()},
		Backup:   BackupConfig{HelperImage: "alpine:3.20"},
		History:  HistoryConfig{Limit: 20},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =============================================================================
// NewServer Tests
// =============================================================================

func TestNewServer_MissingBinary(t *testing.T) {
	cfg := testConfig(t)
	cfg.Docker.Binary = filepath.Join(t.TempDir(), "no-such-docker")

	_, err := NewServer(cfg, testLogger())

	var sErr *ServerError
	require.True(t, errors.As(err, &sErr))
	assert.Equal(t, ExitDockerError, sErr.ExitCode)
}

func TestNewServer_InvalidHost(t *testing.T) {
	cfg := testConfig(t)
	cfg.Docker.Host = "http://example.com"

	_, err := NewServer(cfg, testLogger())

	var sErr *ServerError
	require.True(t, errors.As(err, &sErr))
	assert.Equal(t, ExitConfigError, sErr.ExitCode)
}

func TestNewServer_WithHistory(t *testing.T) {
	cfg := testConfig(t)
	cfg.History = HistoryConfig{Enabled: true, DSN: filepath.Join(t.TempDir(), "history.db"), Limit: 5}

	s, err := NewServer(cfg, testLogger())
	require.NoError(t, err)
	require.NotNil(t, s.history)
	assert.NoError(t, s.Shutdown(context.Background()))
}

func TestNewServer_StdioHasNoHTTPServer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Transport = TransportStdio

	s, err := NewServer(cfg, testLogger())
	require.NoError(t, err)
	assert.Nil(t, s.httpServer)
	assert.Nil(t, s.streamable)
}

// =============================================================================
// Router Tests
// =============================================================================

func TestRouter_Health(t *testing.T) {
	s, err := NewServer(testConfig(t), testLogger())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"dev"}`, rec.Body.String())
}

func TestRouter_UnknownPath(t *testing.T) {
	s, err := NewServer(testConfig(t), testLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/deployments", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerError(t *testing.T) {
	err := &ServerError{Op: "Start", Err: io.ErrClosedPipe, ExitCode: ExitTransportError}
	assert.Equal(t, "Start: io: read/write on closed pipe", err.Error())
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
