package compose

import (
	"fmt"
	"strconv"
)

// =============================================================================
// ParsedSpec - Main Output Type
// =============================================================================

// ParsedSpec represents a parsed Docker Compose file.
// This is the dockrelay-specific representation, decoupled from compose-go types.
type ParsedSpec struct {
	Services []Service `json:"services"`
	Networks []Network `json:"networks,omitempty"`
	Volumes  []Volume  `json:"volumes,omitempty"`
}

// ServiceNames returns the service names in spec order.
func (s *ParsedSpec) ServiceNames() []string {
	names := make([]string, 0, len(s.Services))
	for _, svc := range s.Services {
		names = append(names, svc.Name)
	}
	return names
}

// =============================================================================
// Service Types
// =============================================================================

// Service represents a single service definition.
type Service struct {
	Name        string            `json:"name"`
	Image       string            `json:"image,omitempty"`
	Build       *BuildConfig      `json:"build,omitempty"`
	Command     []string          `json:"command,omitempty"`
	Ports       []Port            `json:"ports,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
	Volumes     []VolumeMount     `json:"volumes,omitempty"`
	Networks    []string          `json:"networks,omitempty"`
	DependsOn   []string          `json:"depends_on,omitempty"`
	Restart     RestartPolicy     `json:"restart,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// BuildConfig represents build configuration (optional).
type BuildConfig struct {
	Context    string `json:"context"`
	Dockerfile string `json:"dockerfile,omitempty"`
}

// Port represents a port mapping.
type Port struct {
	Target    uint32 `json:"target"`              // Container port
	Published uint32 `json:"published,omitempty"` // Host port (0 = dynamic)
	Protocol  string `json:"protocol,omitempty"`  // tcp, udp
	HostIP    string `json:"host_ip,omitempty"`   // Bind IP
}

// String renders the port in compose short syntax, e.g. "127.0.0.1:8080:80/udp".
func (p Port) String() string {
	s := strconv.FormatUint(uint64(p.Target), 10)
	if p.Published != 0 {
		s = strconv.FormatUint(uint64(p.Published), 10) + ":" + s
		if p.HostIP != "" {
			s = p.HostIP + ":" + s
		}
	}
	if p.Protocol != "" && p.Protocol != "tcp" {
		s += "/" + p.Protocol
	}
	return s
}

// VolumeMount represents a volume mount in a service.
type VolumeMount struct {
	Type     VolumeMountType `json:"type"`   // bind, volume, tmpfs
	Source   string          `json:"source"` // Path or volume name
	Target   string          `json:"target"` // Container path
	ReadOnly bool            `json:"readonly"`
}

// String renders the mount in compose short syntax, e.g. "data:/var/lib/data:ro".
func (v VolumeMount) String() string {
	if v.Source == "" {
		return v.Target
	}
	s := fmt.Sprintf("%s:%s", v.Source, v.Target)
	if v.ReadOnly {
		s += ":ro"
	}
	return s
}

// VolumeMountType represents the type of volume mount.
type VolumeMountType string

const (
	VolumeMountTypeBind   VolumeMountType = "bind"
	VolumeMountTypeVolume VolumeMountType = "volume"
	VolumeMountTypeTmpfs  VolumeMountType = "tmpfs"
)

// RestartPolicy represents the restart policy.
type RestartPolicy string

const (
	RestartNo            RestartPolicy = "no"
	RestartAlways        RestartPolicy = "always"
	RestartOnFailure     RestartPolicy = "on-failure"
	RestartUnlessStopped RestartPolicy = "unless-stopped"
)

// =============================================================================
// Network and Volume Types
// =============================================================================

// Network represents a network definition.
type Network struct {
	Name     string            `json:"name"`
	Driver   string            `json:"driver,omitempty"`
	External bool              `json:"external"`
	Labels   map[string]string `json:"labels,omitempty"`
}

// Volume represents a named volume definition.
type Volume struct {
	Name     string            `json:"name"`
	Driver   string            `json:"driver,omitempty"`
	External bool              `json:"external"`
	Labels   map[string]string `json:"labels,omitempty"`
}
