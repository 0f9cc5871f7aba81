// Package commands builds the fixed docker command lines behind each named
// entry point. This is part of the Functional Core - all functions are pure.
package commands

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrMissingArgument is returned when a required argument is empty.
	ErrMissingArgument = errors.New("missing required argument")

	// ErrInvalidArgument is returned when an argument is present but malformed.
	ErrInvalidArgument = errors.New("invalid argument")
)

// MissingArgumentError names the operation and the argument that was missing.
type MissingArgumentError struct {
	Operation string
	Argument  string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument: %s", e.Argument)
}

func (e *MissingArgumentError) Unwrap() error {
	return ErrMissingArgument
}

// InvalidArgumentError describes why an argument was rejected.
type InvalidArgumentError struct {
	Argument string
	Value    string
	Message  string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Argument, e.Value, e.Message)
}

func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// RequireArgs returns a MissingArgumentError for the first blank value.
// Pairs are argument name followed by value.
func RequireArgs(op string, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if isBlank(pairs[i+1]) {
			return &MissingArgumentError{Operation: op, Argument: pairs[i]}
		}
	}
	return nil
}

// checkNames rejects values the docker CLI would read as a flag.
// Pairs are argument name followed by value.
func checkNames(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.HasPrefix(strings.TrimSpace(pairs[i+1]), "-") {
			return &InvalidArgumentError{Argument: pairs[i], Value: pairs[i+1], Message: "must not start with '-'"}
		}
	}
	return nil
}

// checkMountSource rejects values that would change the meaning of a
// -v mount spec.
func checkMountSource(argument, value string) error {
	if strings.Contains(value, ":") {
		return &InvalidArgumentError{Argument: argument, Value: value, Message: "must not contain ':'"}
	}
	return checkNames(argument, value)
}
