package docker

import (
	"net/url"
	"strings"
	"sync"
)

// supportedSchemes are the DOCKER_HOST schemes the CLI understands.
var supportedSchemes = map[string]bool{
	"unix":  true,
	"tcp":   true,
	"ssh":   true,
	"npipe": true,
	"fd":    true,
}

// HostOverride is the process-wide daemon endpoint commands target.
// An empty value leaves DOCKER_HOST to the environment. Last write wins.
type HostOverride struct {
	mu   sync.RWMutex
	host string
}

// NewHostOverride creates an override holding host, which may be empty.
func NewHostOverride(host string) *HostOverride {
	return &HostOverride{host: strings.TrimSpace(host)}
}

// Get returns the current endpoint, or "" when none is set.
func (h *HostOverride) Get() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.host
}

// Set replaces the endpoint after checking it is a DOCKER_HOST URL.
func (h *HostOverride) Set(host string) error {
	host = strings.TrimSpace(host)
	if err := ValidateHost(host); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.host = host
	return nil
}

// Clear removes the endpoint and returns the previous value.
func (h *HostOverride) Clear() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.host
	h.host = ""
	return prev
}

// ValidateHost checks host looks like a DOCKER_HOST value,
// e.g. "unix:///var/run/docker.sock", "tcp://10.0.0.5:2376" or "ssh://deploy@box".
func ValidateHost(host string) error {
	if host == "" {
		return NewDockerError("ValidateHost", host, "host must not be empty", ErrInvalidHost)
	}
	u, err := url.Parse(host)
	if err != nil {
		return NewDockerError("ValidateHost", host, err.Error(), ErrInvalidHost)
	}
	if !supportedSchemes[u.Scheme] {
		return NewDockerError("ValidateHost", host, "scheme must be one of unix, tcp, ssh, npipe or fd", ErrInvalidHost)
	}
	switch u.Scheme {
	case "tcp", "ssh":
		if u.Hostname() == "" {
			return NewDockerError("ValidateHost", host, "missing host name", ErrInvalidHost)
		}
	case "unix", "npipe":
		if u.Path == "" {
			return NewDockerError("ValidateHost", host, "missing socket path", ErrInvalidHost)
		}
	}
	return nil
}
