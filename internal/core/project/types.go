package project

import (
	"sort"
	"time"
)

// Project is a named set of services applied together as one compose project.
type Project struct {
	Name      string    `json:"name"`
	Services  []Service `json:"services"`
	Networks  []Network `json:"networks,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service is the declarative description of one container.
type Service struct {
	Name        string            `json:"name"`
	Image       string            `json:"image"`
	Ports       []string          `json:"ports,omitempty"`       // "8080:80"
	Environment map[string]string `json:"environment,omitempty"` // KEY: value
	Volumes     []string          `json:"volumes,omitempty"`     // "data:/var/lib/data"
	DependsOn   []string          `json:"depends_on,omitempty"`
	Command     []string          `json:"command,omitempty"`
	Restart     string            `json:"restart,omitempty"`
	Networks    []string          `json:"networks,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// Network is a top-level network declaration. Networks a service joins
// without a declaration are created with the default driver.
type Network struct {
	Name     string            `json:"name"`
	Driver   string            `json:"driver,omitempty"`
	External bool              `json:"external,omitempty"` // Created outside the project
	Labels   map[string]string `json:"labels,omitempty"`
}

// Service returns the service with the given name.
func (p Project) Service(name string) (Service, bool) {
	for _, svc := range p.Services {
		if svc.Name == name {
			return svc, true
		}
	}
	return Service{}, false
}

// ServiceNames returns the service names sorted alphabetically.
func (p Project) ServiceNames() []string {
	names := make([]string, 0, len(p.Services))
	for _, svc := range p.Services {
		names = append(names, svc.Name)
	}
	sort.Strings(names)
	return names
}
