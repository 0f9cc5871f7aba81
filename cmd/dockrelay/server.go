package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/artpar/dockrelay/internal/core/project"
	"github.com/artpar/dockrelay/internal/core/translate"
	"github.com/artpar/dockrelay/internal/shell/docker"
	"github.com/artpar/dockrelay/internal/shell/history"
	"github.com/artpar/dockrelay/internal/shell/rpc"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess        = 0
	ExitConfigError    = 1
	ExitDatabaseError  = 2
	ExitDockerError    = 3
	ExitTransportError = 4
)

// =============================================================================
// Server
// =============================================================================

// Server represents the dockrelay process: one MCP server behind the
// configured transport.
type Server struct {
	config     *Config
	rpc        *rpc.Server
	httpServer *http.Server
	streamable *mcpserver.StreamableHTTPServer
	history    history.Store
	logger     *slog.Logger
}

// NewServer creates a new server with the given config.
func NewServer(cfg *Config, logger *slog.Logger) (*Server, error) {
	if _, err := exec.LookPath(cfg.Docker.Binary); err != nil {
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      fmt.Errorf("docker binary %q: %w", cfg.Docker.Binary, err),
			ExitCode: ExitDockerError,
		}
	}

	if cfg.Docker.Host != "" {
		if err := docker.ValidateHost(cfg.Docker.Host); err != nil {
			return nil, &ServerError{Op: "NewServer", Err: err, ExitCode: ExitConfigError}
		}
	}
	hosts := docker.NewHostOverride(cfg.Docker.Host)

	runner := docker.NewCLIRunner(docker.CLIRunnerConfig{
		Binary:  cfg.Docker.Binary,
		Timeout: cfg.Docker.CommandTimeout,
		Hosts:   hosts,
	}, logger)

	prober := docker.NewProber(docker.ProberConfig{
		Timeout:      cfg.Docker.ProbeTimeout,
		RemoteBinary: "docker",
	}, logger)

	var store history.Store
	if cfg.History.Enabled {
		s, err := history.NewSQLiteStore(cfg.History.DSN)
		if err != nil {
			return nil, &ServerError{
				Op:       "NewServer",
				Err:      err,
				ExitCode: ExitDatabaseError,
			}
		}
		store = s
		logger.Info("command history enabled", "dsn", cfg.History.DSN)
	}

	rpcServer := rpc.NewServer(rpc.Deps{
		Runner:     runner,
		Translator: translate.Default(),
		Projects:   project.NewRegistry(),
		Hosts:      hosts,
		Prober:     prober,
		History:    store,
	}, rpc.Config{
		Name:         "dockrelay",
		Version:      Version,
		ProjectsDir:  cfg.Projects.Dir,
		HelperImage:  cfg.Backup.HelperImage,
		HistoryLimit: cfg.History.Limit,
	}, logger)

	s := &Server{
		config:  cfg,
		rpc:     rpcServer,
		history: store,
		logger:  logger,
	}

	if cfg.Server.Transport == TransportHTTP {
		s.streamable = mcpserver.NewStreamableHTTPServer(rpcServer.MCP())
		s.httpServer = &http.Server{
			Addr:    cfg.Server.Address(),
			Handler: s.Router(),
		}
	}

	return s, nil
}

// Router returns the http transport's handler: the MCP endpoint under /mcp
// and a liveness check under /health.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","version":%q}`, Version)
	})
	if s.streamable != nil {
		r.Handle("/mcp", s.streamable)
	}
	return r
}

// Start serves the configured transport and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// A nil error on doneCh means the client went away
	doneCh := make(chan error, 1)
	switch s.config.Server.Transport {
	case TransportHTTP:
		go func() {
			s.logger.Info("starting HTTP transport", "address", s.config.Server.Address())
			if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				doneCh <- err
			}
		}()
	default:
		stdio := mcpserver.NewStdioServer(s.rpc.MCP())
		stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
		go func() {
			s.logger.Info("serving on stdio")
			doneCh <- stdio.Listen(ctx, os.Stdin, os.Stdout)
		}()
	}

	select {
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig)
	case err := <-doneCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			s.Shutdown(context.Background())
			return &ServerError{
				Op:       "Start",
				Err:      err,
				ExitCode: ExitTransportError,
			}
		}
		s.logger.Info("client disconnected")
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "error", err)
		}
	}
	if s.streamable != nil {
		if err := s.streamable.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("MCP transport shutdown error", "error", err)
		}
	}

	if s.history != nil {
		if err := s.history.Close(); err != nil {
			s.logger.Error("history close error", "error", err)
		}
	}

	s.logger.Info("shutdown complete")
	return nil
}

// =============================================================================
// Server Error
// =============================================================================

// ServerError represents an error during server operation.
type ServerError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *ServerError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
