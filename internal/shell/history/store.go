package history

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxOutputBytes caps how much command output an entry keeps.
const MaxOutputBytes = 4096

// Entry is one relayed command.
type Entry struct {
	ID        string        `json:"id"`
	Tool      string        `json:"tool"`
	Phrase    string        `json:"phrase,omitempty"` // Natural-language input, if any
	Command   string        `json:"command"`
	Host      string        `json:"host,omitempty"` // DOCKER_HOST override in effect
	ExitCode  int           `json:"exit_code"`
	Output    string        `json:"output,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewEntry creates an entry with a fresh ID and timestamp. Output beyond
// MaxOutputBytes is dropped.
func NewEntry(tool, phrase, command string) *Entry {
	return &Entry{
		ID:        uuid.New().String(),
		Tool:      tool,
		Phrase:    phrase,
		Command:   command,
		CreatedAt: time.Now().UTC(),
	}
}

// SetOutput stores output, truncated to MaxOutputBytes on a rune boundary.
func (e *Entry) SetOutput(output string) {
	if len(output) > MaxOutputBytes {
		n := MaxOutputBytes
		for n > 0 && !utf8.RuneStart(output[n]) {
			n--
		}
		output = output[:n]
	}
	e.Output = output
}

// Store records and lists history entries.
type Store interface {
	Record(ctx context.Context, entry *Entry) error
	List(ctx context.Context, opts ListOptions) ([]Entry, error)
	Close() error
}

// ListOptions filters and pages history listings.
type ListOptions struct {
	Limit  int
	Offset int
	Tool   string // Only entries from this tool when set
}

// DefaultListOptions returns default list options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:  20,
		Offset: 0,
	}
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 20
	}
	if o.Limit > 1000 {
		o.Limit = 1000
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
