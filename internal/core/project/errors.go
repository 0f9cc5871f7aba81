package project

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	ErrNotFound            = errors.New("project is not defined")
	ErrInvalidName         = errors.New("invalid project name")
	ErrNoServices          = errors.New("project must define at least one service")
	ErrInvalidService      = errors.New("invalid service")
	ErrMissingImage        = errors.New("service must have an image")
	ErrDuplicateService    = errors.New("duplicate service name")
	ErrUnknownDependency   = errors.New("dependency names an unknown service")
	ErrCircularDependency  = errors.New("circular dependency detected")
	ErrInvalidPort         = errors.New("invalid port mapping")
	ErrInvalidRestart      = errors.New("invalid restart policy")
	ErrInvalidNetwork      = errors.New("invalid network")
	ErrInvalidComposeInput = errors.New("invalid compose file")
)

// ValidationError reports which part of a project failed validation.
type ValidationError struct {
	Project string
	Field   string // e.g., "services.web.ports[0]"
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("project %s: %s: %s", e.Project, e.Field, e.Message)
	}
	return fmt.Sprintf("project %s: %s", e.Project, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned when a project name has no definition.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("project %q is not defined", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
