package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"

	"github.com/artpar/dockrelay/internal/core/commands"
	"github.com/artpar/dockrelay/internal/core/relay"
)

// Runner executes one docker command line and captures its output.
type Runner interface {
	Run(ctx context.Context, command string) (*relay.Result, error)
}

// =============================================================================
// CLI Runner
// =============================================================================

// CLIRunnerConfig configures a CLIRunner.
type CLIRunnerConfig struct {
	Binary  string        // Executable run in place of "docker". Default: docker
	Timeout time.Duration // Per-command limit. 0 means none
	Hosts   *HostOverride // Sets DOCKER_HOST when non-empty. May be nil
}

// CLIRunner runs commands through the docker CLI without a shell. Each call
// blocks until the process exits.
type CLIRunner struct {
	binary  string
	timeout time.Duration
	hosts   *HostOverride
	logger  *slog.Logger
}

// NewCLIRunner creates a runner from cfg.
func NewCLIRunner(cfg CLIRunnerConfig, logger *slog.Logger) *CLIRunner {
	if cfg.Binary == "" {
		cfg.Binary = commands.Binary
	}
	if cfg.Hosts == nil {
		cfg.Hosts = NewHostOverride("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIRunner{
		binary:  cfg.Binary,
		timeout: cfg.Timeout,
		hosts:   cfg.Hosts,
		logger:  logger.With("component", "docker_runner"),
	}
}

// Run splits command, replaces the leading "docker" with the configured
// binary and executes it. The returned Result is non-nil whenever the
// process started, including when it exited non-zero.
func (r *CLIRunner) Run(ctx context.Context, command string) (*relay.Result, error) {
	argv, err := SplitCommand(command)
	if err != nil {
		return nil, err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.binary, argv[1:]...)
	if host := r.hosts.Get(); host != "" {
		cmd.Env = append(os.Environ(), "DOCKER_HOST="+host)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	result := &relay.Result{
		Command:  command,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if runErr == nil {
		r.logger.Debug("command finished", "command", command, "duration", result.Duration)
		return result, nil
	}

	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		result.ExitCode = -1
		cause := ctx.Err()
		if errors.Is(cause, context.DeadlineExceeded) {
			cause = fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
		}
		return result, &CommandError{Command: command, ExitCode: -1, Stderr: result.Stderr, Err: ErrCommandFailed, Cause: cause}
	case errors.As(runErr, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, &CommandError{Command: command, ExitCode: result.ExitCode, Stderr: result.Stderr, Err: ErrCommandFailed}
	default:
		return nil, &CommandError{Command: command, ExitCode: -1, Err: ErrStartFailed, Cause: runErr}
	}
}

// SplitCommand splits a docker command line into argv the way a POSIX
// shell would quote it. Variables and backticks are not expanded, and
// shell operators such as pipes or redirections are rejected.
func SplitCommand(command string) ([]string, error) {
	p := shellwords.NewParser()
	p.ParseEnv = false
	p.ParseBacktick = false

	argv, err := p.Parse(command)
	if err != nil {
		return nil, &CommandError{Command: command, ExitCode: -1, Err: ErrInvalidCommand, Cause: err}
	}
	if p.Position != -1 {
		// Position counts runes, not bytes.
		var rest string
		if runes := []rune(command); p.Position < len(runes) {
			rest = strings.TrimSpace(string(runes[p.Position:]))
		}
		return nil, &CommandError{
			Command:  command,
			ExitCode: -1,
			Err:      ErrInvalidCommand,
			Cause:    fmt.Errorf("shell operators are not supported near %q", rest),
		}
	}
	if len(argv) == 0 || argv[0] != commands.Binary {
		return nil, &CommandError{
			Command:  command,
			ExitCode: -1,
			Err:      ErrInvalidCommand,
			Cause:    fmt.Errorf("command must start with %q", commands.Binary),
		}
	}
	if len(argv) == 1 {
		return nil, &CommandError{Command: command, ExitCode: -1, Err: ErrInvalidCommand, Cause: errors.New("no docker subcommand given")}
	}
	return argv, nil
}
