// Package relay defines the captured result of one external invocation and
// how it is rendered back to the caller.
//
// This package contains pure types with no I/O.
package relay

import (
	"fmt"
	"strings"
	"time"
)

// Result is the captured output of one docker invocation.
type Result struct {
	Command  string        `json:"command"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
}

// Success reports whether the invocation exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Format renders a successful result. Stdout is relayed verbatim; stderr
// follows it when the tool wrote warnings there.
func Format(r *Result) string {
	out := r.Stdout
	errOut := strings.TrimRight(r.Stderr, "\n")

	switch {
	case strings.TrimSpace(out) == "" && strings.TrimSpace(errOut) == "":
		return fmt.Sprintf("command completed with no output: %s", r.Command)
	case strings.TrimSpace(errOut) == "":
		return out
	case strings.TrimSpace(out) == "":
		return errOut
	default:
		return strings.TrimRight(out, "\n") + "\n" + errOut
	}
}

// FormatFailure renders a failed invocation. The tool's own stderr is the
// most useful message when present; otherwise the cause is used.
func FormatFailure(command, stderr string, cause error) string {
	msg := strings.TrimSpace(stderr)
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Sprintf("error running %q: %s", command, msg)
}

// WithCommand prefixes output with the command line that produced it, the
// way a terminal transcript shows it.
func WithCommand(command, output string) string {
	return "$ " + command + "\n" + output
}
