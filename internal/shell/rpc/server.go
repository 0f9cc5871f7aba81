// Package rpc exposes the relay as MCP tools over line-delimited JSON-RPC.
//
// Every tool validates its required arguments, builds one docker command
// line and runs it. Failures come back as tool errors carrying a readable
// message; they never end the session.
package rpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/artpar/dockrelay/internal/core/project"
	"github.com/artpar/dockrelay/internal/core/translate"
	"github.com/artpar/dockrelay/internal/shell/docker"
	"github.com/artpar/dockrelay/internal/shell/history"
)

// HostProber checks a daemon endpoint. *docker.Prober satisfies it.
type HostProber interface {
	Probe(ctx context.Context, host string) docker.ProbeResult
}

// Config holds the settings tools need beyond their collaborators.
type Config struct {
	Name         string // Server name reported to clients
	Version      string
	ProjectsDir  string // Where applied compose files are written
	HelperImage  string // Image used for volume backup and restore
	HistoryLimit int    // Default number of history entries returned
}

// Deps are the collaborators the tools run against. History may be nil.
type Deps struct {
	Runner     docker.Runner
	Translator *translate.Translator
	Projects   *project.Registry
	Hosts      *docker.HostOverride
	Prober     HostProber
	History    history.Store
}

// Server owns the MCP server and the state shared by its tools.
type Server struct {
	mcp        *server.MCPServer
	runner     docker.Runner
	translator *translate.Translator
	projects   *project.Registry
	hosts      *docker.HostOverride
	prober     HostProber
	history    history.Store
	config     Config
	logger     *slog.Logger
	now        func() time.Time
}

// NewServer creates the MCP server and registers every tool.
func NewServer(deps Deps, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name == "" {
		cfg.Name = "dockrelay"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.ProjectsDir == "" {
		cfg.ProjectsDir = "./data/projects"
	}
	if cfg.HelperImage == "" {
		cfg.HelperImage = "alpine:3.20"
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}
	if deps.Translator == nil {
		deps.Translator = translate.Default()
	}
	if deps.Projects == nil {
		deps.Projects = project.NewRegistry()
	}
	if deps.Hosts == nil {
		deps.Hosts = docker.NewHostOverride("")
	}

	s := &Server{
		runner:     deps.Runner,
		translator: deps.Translator,
		projects:   deps.Projects,
		hosts:      deps.Hosts,
		prober:     deps.Prober,
		history:    deps.History,
		config:     cfg,
		logger:     logger.With("component", "rpc"),
		now:        time.Now,
	}

	s.mcp = server.NewMCPServer(
		cfg.Name,
		cfg.Version,
		server.WithToolCapabilities(true),
		server.WithToolHandlerMiddleware(s.logToolCall),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	s.registerTools()

	return s
}

// MCP returns the underlying MCP server for a transport to serve.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// registerTools adds every tool definition with its handler.
func (s *Server) registerTools() {
	for _, t := range s.tools() {
		s.mcp.AddTool(t.def, t.handle)
	}
}

type tool struct {
	def    mcp.Tool
	handle server.ToolHandlerFunc
}

func (s *Server) tools() []tool {
	var all []tool
	all = append(all, s.naturalLanguageTools()...)
	all = append(all, s.containerTools()...)
	all = append(all, s.imageTools()...)
	all = append(all, s.backupTools()...)
	all = append(all, s.projectTools()...)
	all = append(all, s.hostTools()...)
	all = append(all, s.historyTools()...)
	return all
}

// logToolCall logs every tool call with its duration and outcome.
func (s *Server) logToolCall(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := s.now()
		result, err := next(ctx, req)
		duration := time.Since(start)

		switch {
		case err != nil:
			s.logger.Error("tool call failed", "tool", req.Params.Name, "duration", duration, "error", err)
		case result != nil && result.IsError:
			s.logger.Warn("tool returned error", "tool", req.Params.Name, "duration", duration)
		default:
			s.logger.Info("tool call", "tool", req.Params.Name, "duration", duration)
		}
		return result, err
	}
}

const instructions = `dockrelay relays docker commands.

Use docker_natural_language for plain-English requests such as "list running containers"
or "show the last 50 logs for web". Use docker_translate first when you want to see the
command without running it, and list_phrases to see what phrasings are understood.
The named tools (list_containers, run_container, project_apply, ...) run fixed command
templates. Define multi-container projects with project_define, review them with
project_plan, and start them with project_apply. set_docker_host points every later
command at another daemon.`
