package project

import (
	"sort"
	"sync"
	"time"
)

// Registry holds project definitions for the lifetime of the process.
// Writes replace whatever was stored under the same name.
type Registry struct {
	mu       sync.RWMutex
	projects map[string]Project
	now      func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		projects: make(map[string]Project),
		now:      time.Now,
	}
}

// Put stores p under p.Name, stamping UpdatedAt. It returns the stored value.
func (r *Registry) Put(p Project) Project {
	p.UpdatedAt = r.now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[p.Name] = p
	return p
}

// Get returns the project stored under name.
func (r *Registry) Get(name string) (Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[name]
	if !ok {
		return Project{}, &NotFoundError{Name: name}
	}
	return p, nil
}

// Delete removes name and reports whether it was present.
func (r *Registry) Delete(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.projects[name]
	delete(r.projects, name)
	return ok
}

// List returns every project sorted by name.
func (r *Registry) List() []Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
