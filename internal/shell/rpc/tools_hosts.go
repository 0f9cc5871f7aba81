package rpc

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/artpar/dockrelay/internal/core/commands"
)

// =============================================================================
// Docker Host Tools
// =============================================================================

func (s *Server) hostTools() []tool {
	return []tool{
		{
			def: mcp.NewTool("set_docker_host",
				mcp.WithDescription("Point every later command at another docker daemon"),
				mcp.WithString("host", mcp.Required(), mcp.Description(`DOCKER_HOST value, e.g. "ssh://deploy@build-box" or "tcp://10.0.0.5:2376"`)),
				mcp.WithBoolean("probe", mcp.Description("Check the daemon answers before switching")),
			),
			handle: s.handleSetDockerHost,
		},
		{
			def: mcp.NewTool("get_docker_host",
				mcp.WithDescription("Show which docker daemon commands target"),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handle: s.handleGetDockerHost,
		},
		{
			def: mcp.NewTool("clear_docker_host",
				mcp.WithDescription("Go back to the daemon selected by the server's environment"),
			),
			handle: func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				prev := s.hosts.Clear()
				if prev == "" {
					return mcp.NewToolResultText("no docker host override was set"), nil
				}
				s.logger.Info("docker host cleared", "previous", prev)
				return mcp.NewToolResultText(fmt.Sprintf("docker host override %s cleared", prev)), nil
			},
		},
		{
			def: mcp.NewTool("probe_docker_host",
				mcp.WithDescription("Check that a docker daemon answers. Defaults to the current target."),
				mcp.WithString("host", mcp.Description("DOCKER_HOST value to check")),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handle: s.handleProbeDockerHost,
		},
	}
}

func (s *Server) handleSetDockerHost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	host := req.GetString("host", "")
	if err := commands.RequireArgs("set_docker_host", "host", host); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if req.GetBool("probe", false) {
		if s.prober == nil {
			return mcp.NewToolResultError("host probing is not available"), nil
		}
		result := s.prober.Probe(ctx, host)
		if !result.Reachable {
			return mcp.NewToolResultError(result.String() + "; docker host left unchanged"), nil
		}
	}

	if err := s.hosts.Set(host); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.logger.Info("docker host set", "host", s.hosts.Get())
	return mcp.NewToolResultText(fmt.Sprintf("docker commands now target %s", s.hosts.Get())), nil
}

func (s *Server) handleGetDockerHost(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if host := s.hosts.Get(); host != "" {
		return mcp.NewToolResultText("docker host: " + host), nil
	}
	if env := os.Getenv("DOCKER_HOST"); env != "" {
		return mcp.NewToolResultText("no override set; using DOCKER_HOST from the environment: " + env), nil
	}
	return mcp.NewToolResultText("no override set; using the docker CLI default"), nil
}

func (s *Server) handleProbeDockerHost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.prober == nil {
		return mcp.NewToolResultError("host probing is not available"), nil
	}
	host := req.GetString("host", s.hosts.Get())
	result := s.prober.Probe(ctx, host)
	if !result.Reachable {
		return mcp.NewToolResultError(result.String()), nil
	}
	return mcp.NewToolResultText(result.String()), nil
}
