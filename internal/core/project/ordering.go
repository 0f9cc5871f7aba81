package project

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// Service Ordering Functions
// =============================================================================

// Order sorts service names by their dependencies using Kahn's algorithm.
// Services with no dependencies come first; ties are broken alphabetically so
// the same project always yields the same order.
//
// Dependencies on names that are not in services are ignored here; Validate
// reports them. A cycle returns ErrCircularDependency naming the services
// that could not be ordered.
//
// Example:
//
//	// Services: web → api → db, cache
//	Order(services) // [cache db api web]
func Order(services []Service) ([]string, error) {
	if len(services) == 0 {
		return nil, nil
	}

	known := make(map[string]bool, len(services))
	for _, svc := range services {
		known[svc.Name] = true
	}

	inDegree := make(map[string]int, len(services))
	dependents := make(map[string][]string)
	for _, svc := range services {
		inDegree[svc.Name] += 0
		for _, dep := range svc.DependsOn {
			if !known[dep] {
				continue
			}
			inDegree[svc.Name]++
			dependents[dep] = append(dependents[dep], svc.Name)
		}
	}

	var ready []string
	for name, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	result := make([]string, 0, len(inDegree))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		result = append(result, name)

		for _, dep := range dependents[name] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = insertSorted(ready, dep)
			}
		}
	}

	if len(result) < len(inDegree) {
		var stuck []string
		for name, degree := range inDegree {
			if degree > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w: %s", ErrCircularDependency, strings.Join(stuck, ", "))
	}

	return result, nil
}

func insertSorted(names []string, name string) []string {
	i := sort.SearchStrings(names, name)
	names = append(names, "")
	copy(names[i+1:], names[i:])
	names[i] = name
	return names
}
