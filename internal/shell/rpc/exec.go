package rpc

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/artpar/dockrelay/internal/core/relay"
	"github.com/artpar/dockrelay/internal/shell/docker"
	"github.com/artpar/dockrelay/internal/shell/history"
)

// invocation is one command a tool is about to run.
type invocation struct {
	tool    string
	phrase  string // Natural-language input, when the command was translated
	command string
	echo    bool // Prefix the output with the command line
}

// run reports buildErr without invoking anything. Otherwise it runs inv
// and renders the outcome.
func (s *Server) run(ctx context.Context, inv invocation, buildErr error) (*mcp.CallToolResult, error) {
	if buildErr != nil {
		return mcp.NewToolResultError(buildErr.Error()), nil
	}

	res, err := s.execute(ctx, inv)
	if err != nil {
		stderr := ""
		if res != nil {
			stderr = res.Stderr
		}
		return mcp.NewToolResultError(relay.FormatFailure(inv.command, stderr, err)), nil
	}

	out := relay.Format(res)
	if inv.echo {
		out = relay.WithCommand(inv.command, out)
	}
	return mcp.NewToolResultText(out), nil
}

// execute runs inv through the runner and records it in history.
func (s *Server) execute(ctx context.Context, inv invocation) (*relay.Result, error) {
	if s.runner == nil {
		return nil, errors.New("no docker runner configured")
	}

	res, err := s.runner.Run(ctx, inv.command)
	if err == nil && res != nil && !res.Success() {
		err = &docker.CommandError{Command: inv.command, ExitCode: res.ExitCode, Stderr: res.Stderr, Err: docker.ErrCommandFailed}
	}

	exitCode := 0
	if res != nil {
		exitCode = res.ExitCode
	}
	var cmdErr *docker.CommandError
	if errors.As(err, &cmdErr) {
		exitCode = cmdErr.ExitCode
	}

	if err != nil {
		s.logger.Warn("docker command failed", "tool", inv.tool, "command", inv.command, "exit_code", exitCode, "error", err)
	} else {
		s.logger.Info("docker command", "tool", inv.tool, "command", inv.command, "exit_code", exitCode, "duration", res.Duration)
	}

	s.record(ctx, inv, res, exitCode, err)
	return res, err
}

// record writes a history entry when history is enabled. A failed write is
// logged and otherwise ignored.
func (s *Server) record(ctx context.Context, inv invocation, res *relay.Result, exitCode int, runErr error) {
	if s.history == nil {
		return
	}

	entry := history.NewEntry(inv.tool, inv.phrase, inv.command)
	entry.Host = s.hosts.Get()
	entry.ExitCode = exitCode
	if res != nil {
		entry.SetOutput(res.Stdout)
		entry.Duration = res.Duration
	}
	if runErr != nil {
		entry.Error = runErr.Error()
	}

	if err := s.history.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record command history", "command", inv.command, "error", err)
	}
}
