// Package docker runs docker command lines against the external CLI and
// manages which daemon those commands target.
package docker

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Invocation errors
	ErrCommandFailed  = errors.New("docker command failed")
	ErrStartFailed    = errors.New("docker command could not be started")
	ErrInvalidCommand = errors.New("invalid docker command line")
	ErrTimeout        = errors.New("operation timed out")

	// Host errors
	ErrInvalidHost      = errors.New("invalid docker host")
	ErrConnectionFailed = errors.New("docker connection failed")
)

// CommandError describes a docker invocation that did not succeed.
// Err is one of the invocation sentinels; Cause carries the underlying
// error from os/exec or the context when there is one.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
	Cause    error
}

func (e *CommandError) Error() string {
	switch {
	case e.ExitCode > 0:
		return fmt.Sprintf("%s: %s: exit status %d", e.Err, e.Command, e.ExitCode)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Err, e.Command, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Err, e.Command)
	}
}

func (e *CommandError) Unwrap() []error {
	errs := []error{e.Err}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// DockerError wraps host-level errors with the operation and endpoint.
type DockerError struct {
	Op      string // Operation that failed
	Host    string // Endpoint if applicable
	Message string
	Err     error
}

func (e *DockerError) Error() string {
	if e.Host != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Host, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *DockerError) Unwrap() error {
	return e.Err
}

// NewDockerError creates a new DockerError.
func NewDockerError(op, host, message string, err error) *DockerError {
	return &DockerError{
		Op:      op,
		Host:    host,
		Message: message,
		Err:     err,
	}
}
