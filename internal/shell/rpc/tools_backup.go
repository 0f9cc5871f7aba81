package rpc

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/artpar/dockrelay/internal/core/commands"
)

// =============================================================================
// Backup and Export Tools
// =============================================================================

func (s *Server) backupTools() []tool {
	return []tool{
		{
			def: mcp.NewTool("export_container",
				mcp.WithDescription("Export a container's filesystem as a tar archive"),
				containerArg(),
				mcp.WithString("output", mcp.Required(), mcp.Description("Path of the archive to write")),
			),
			handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cmd, err := commands.ExportContainer(req.GetString("container", ""), absPath(req.GetString("output", "")))
				return s.run(ctx, invocation{tool: "export_container", command: cmd}, err)
			},
		},
		{
			def: mcp.NewTool("save_image",
				mcp.WithDescription("Save an image to a tar archive"),
				mcp.WithString("image", mcp.Required(), mcp.Description("Image reference")),
				mcp.WithString("output", mcp.Required(), mcp.Description("Path of the archive to write")),
			),
			handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cmd, err := commands.SaveImage(req.GetString("image", ""), absPath(req.GetString("output", "")))
				return s.run(ctx, invocation{tool: "save_image", command: cmd}, err)
			},
		},
		{
			def: mcp.NewTool("backup_volume",
				mcp.WithDescription("Archive a volume's contents into a directory on the docker host"),
				mcp.WithString("volume", mcp.Required(), mcp.Description("Volume name")),
				mcp.WithString("destination", mcp.Required(), mcp.Description("Directory the .tar.gz archive is written to")),
			),
			handle: s.handleBackupVolume,
		},
		{
			def: mcp.NewTool("restore_volume",
				mcp.WithDescription("Unpack a .tar.gz archive into a volume"),
				mcp.WithString("volume", mcp.Required(), mcp.Description("Volume name; created when missing")),
				mcp.WithString("archive", mcp.Required(), mcp.Description("Path of the archive made by backup_volume")),
				mcp.WithDestructiveHintAnnotation(true),
			),
			handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cmd, err := commands.RestoreVolume(req.GetString("volume", ""), absPath(req.GetString("archive", "")), s.config.HelperImage)
				return s.run(ctx, invocation{tool: "restore_volume", command: cmd}, err)
			},
		},
	}
}

func (s *Server) handleBackupVolume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	volume := req.GetString("volume", "")
	dest := absPath(req.GetString("destination", ""))

	archive := backupArchiveName(volume, s.now().UTC().Format("20060102-150405"))
	cmd, err := commands.BackupVolume(volume, dest, archive, s.config.HelperImage)
	result, runErr := s.run(ctx, invocation{tool: "backup_volume", command: cmd}, err)
	if runErr != nil || result.IsError {
		return result, runErr
	}
	return mcp.NewToolResultText(fmt.Sprintf("volume %s backed up to %s", volume, filepath.Join(dest, archive))), nil
}

// backupArchiveName returns "<volume>-<stamp>-<id>.tar.gz"; the short ID
// keeps two backups in the same second apart.
func backupArchiveName(volume, stamp string) string {
	id := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s-%s-%s.tar.gz", volume, stamp, id)
}

// absPath resolves p against the working directory. Blank input stays
// blank so the missing-argument check still fires.
func absPath(p string) string {
	if strings.TrimSpace(p) == "" {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
