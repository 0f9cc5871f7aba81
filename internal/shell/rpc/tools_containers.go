package rpc

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/artpar/dockrelay/internal/core/commands"
)

// =============================================================================
// Container Tools
// =============================================================================

func containerArg() mcp.ToolOption {
	return mcp.WithString("container", mcp.Required(), mcp.Description("Container name or ID"))
}

func (s *Server) containerTools() []tool {
	tools := []tool{
		{
			def: mcp.NewTool("list_containers",
				mcp.WithDescription("List containers"),
				mcp.WithBoolean("all", mcp.Description("Include stopped containers")),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cmd := commands.ListContainers(req.GetBool("all", false))
				return s.run(ctx, invocation{tool: "list_containers", command: cmd}, nil)
			},
		},
		{
			def: mcp.NewTool("container_logs",
				mcp.WithDescription("Show a container's logs"),
				containerArg(),
				mcp.WithNumber("tail", mcp.Description("Only the last N lines; 0 shows everything")),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cmd, err := commands.Logs(req.GetString("container", ""), req.GetInt("tail", 0))
				return s.run(ctx, invocation{tool: "container_logs", command: cmd}, err)
			},
		},
	}

	for _, verb := range []string{commands.VerbStart, commands.VerbStop, commands.VerbRestart} {
		name := verb + "_container"
		verb := verb
		tools = append(tools, tool{
			def: mcp.NewTool(name,
				mcp.WithDescription("Run docker "+verb+" on a container"),
				containerArg(),
			),
			handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cmd, err := commands.Lifecycle(verb, req.GetString("container", ""))
				return s.run(ctx, invocation{tool: name, command: cmd}, err)
			},
		})
	}

	return append(tools,
		tool{
			def: mcp.NewTool("remove_container",
				mcp.WithDescription("Remove a container"),
				containerArg(),
				mcp.WithBoolean("force", mcp.Description("Kill and remove a running container")),
				mcp.WithDestructiveHintAnnotation(true),
			),
			handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cmd, err := commands.Remove(req.GetString("container", ""), req.GetBool("force", false))
				return s.run(ctx, invocation{tool: "remove_container", command: cmd}, err)
			},
		},
		tool{
			def: mcp.NewTool("inspect_container",
				mcp.WithDescription("Show low-level information about a container"),
				containerArg(),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cmd, err := commands.Inspect(req.GetString("container", ""))
				return s.run(ctx, invocation{tool: "inspect_container", command: cmd}, err)
			},
		},
		tool{
			def: mcp.NewTool("container_stats",
				mcp.WithDescription("Show one sample of a container's resource usage"),
				containerArg(),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cmd, err := commands.Stats(req.GetString("container", ""))
				return s.run(ctx, invocation{tool: "container_stats", command: cmd}, err)
			},
		},
		tool{
			def: mcp.NewTool("container_top",
				mcp.WithDescription("Show the processes running in a container"),
				containerArg(),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cmd, err := commands.Top(req.GetString("container", ""))
				return s.run(ctx, invocation{tool: "container_top", command: cmd}, err)
			},
		},
		tool{
			def: mcp.NewTool("exec_container",
				mcp.WithDescription("Run a command inside a running container"),
				containerArg(),
				mcp.WithString("command", mcp.Required(), mcp.Description(`Command and arguments, e.g. "ls -la /app"`)),
			),
			handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cmd, err := commands.Exec(req.GetString("container", ""), req.GetString("command", ""))
				return s.run(ctx, invocation{tool: "exec_container", command: cmd}, err)
			},
		},
		tool{
			def: mcp.NewTool("run_container",
				mcp.WithDescription("Start a new detached container from an image"),
				mcp.WithString("image", mcp.Required(), mcp.Description("Image reference, e.g. nginx:alpine")),
				mcp.WithString("name", mcp.Description("Container name")),
				mcp.WithArray("ports", mcp.Description(`Published ports, e.g. ["8080:80"]`), mcp.Items(map[string]any{"type": "string"})),
				mcp.WithArray("env", mcp.Description(`Environment, e.g. ["KEY=value"]`), mcp.Items(map[string]any{"type": "string"})),
				mcp.WithArray("volumes", mcp.Description(`Mounts, e.g. ["data:/var/lib/data"]`), mcp.Items(map[string]any{"type": "string"})),
				mcp.WithString("command", mcp.Description("Command to run instead of the image default")),
				mcp.WithBoolean("remove", mcp.Description("Remove the container when it exits")),
			),
			handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cmd, err := commands.Run(commands.RunSpec{
					Image:   req.GetString("image", ""),
					Name:    req.GetString("name", ""),
					Ports:   req.GetStringSlice("ports", nil),
					Env:     req.GetStringSlice("env", nil),
					Volumes: req.GetStringSlice("volumes", nil),
					Command: req.GetString("command", ""),
					Remove:  req.GetBool("remove", false),
				})
				return s.run(ctx, invocation{tool: "run_container", command: cmd}, err)
			},
		},
	)
}
