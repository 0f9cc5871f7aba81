// Package translate turns natural-language phrases into docker command lines.
// This is part of the Functional Core - all functions are pure with no I/O.
package translate

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrEmptyPhrase is returned when the phrase is blank after normalization.
	ErrEmptyPhrase = errors.New("phrase is empty")

	// ErrNoMatch is returned when no rule in the cascade matches the phrase.
	ErrNoMatch = errors.New("no translation rule matches phrase")
)

// NoMatchError carries the normalized phrase that failed to translate.
type NoMatchError struct {
	Phrase string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("could not translate %q into a docker command", e.Phrase)
}

func (e *NoMatchError) Unwrap() error {
	return ErrNoMatch
}
