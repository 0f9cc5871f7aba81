package rpc

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/artpar/dockrelay/internal/core/commands"
)

// =============================================================================
// Image, Volume and Network Tools
// =============================================================================

func (s *Server) imageTools() []tool {
	return []tool{
		{
			def: mcp.NewTool("list_images",
				mcp.WithDescription("List local images"),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handle: func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return s.run(ctx, invocation{tool: "list_images", command: commands.ListImages()}, nil)
			},
		},
		{
			def: mcp.NewTool("pull_image",
				mcp.WithDescription("Pull an image from its registry"),
				mcp.WithString("image", mcp.Required(), mcp.Description("Image reference, e.g. redis:7")),
			),
			handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cmd, err := commands.Pull(req.GetString("image", ""))
				return s.run(ctx, invocation{tool: "pull_image", command: cmd}, err)
			},
		},
		{
			def: mcp.NewTool("remove_image",
				mcp.WithDescription("Remove a local image"),
				mcp.WithString("image", mcp.Required(), mcp.Description("Image reference or ID")),
				mcp.WithBoolean("force", mcp.Description("Remove even when tagged in several repositories")),
				mcp.WithDestructiveHintAnnotation(true),
			),
			handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cmd, err := commands.RemoveImage(req.GetString("image", ""), req.GetBool("force", false))
				return s.run(ctx, invocation{tool: "remove_image", command: cmd}, err)
			},
		},
		{
			def: mcp.NewTool("list_volumes",
				mcp.WithDescription("List volumes"),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handle: func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return s.run(ctx, invocation{tool: "list_volumes", command: commands.ListVolumes()}, nil)
			},
		},
		{
			def: mcp.NewTool("list_networks",
				mcp.WithDescription("List networks"),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handle: func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return s.run(ctx, invocation{tool: "list_networks", command: commands.ListNetworks()}, nil)
			},
		},
	}
}
