package rpc

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/artpar/dockrelay/internal/shell/history"
)

func (s *Server) historyTools() []tool {
	return []tool{
		{
			def: mcp.NewTool("command_history",
				mcp.WithDescription("Show the most recent relayed commands"),
				mcp.WithNumber("limit", mcp.Description("How many entries to show")),
				mcp.WithNumber("offset", mcp.Description("How many of the newest entries to skip")),
				mcp.WithString("tool", mcp.Description("Only entries from this tool")),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handle: s.handleCommandHistory,
		},
	}
}

func (s *Server) handleCommandHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.history == nil {
		return mcp.NewToolResultText("command history is disabled; set history.enabled to record commands"), nil
	}

	opts := history.DefaultListOptions()
	if s.config.HistoryLimit > 0 {
		opts.Limit = s.config.HistoryLimit
	}
	opts.Limit = req.GetInt("limit", opts.Limit)
	opts.Offset = req.GetInt("offset", 0)
	opts.Tool = req.GetString("tool", "")

	entries, err := s.history.List(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("read command history: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("no commands recorded yet"), nil
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s  %-24s exit=%d  %s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Tool, e.ExitCode, e.Command)
		if e.Phrase != "" {
			fmt.Fprintf(&b, "  (%q)", e.Phrase)
		}
		if e.Host != "" {
			fmt.Fprintf(&b, "  @%s", e.Host)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}
