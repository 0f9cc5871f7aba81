package project

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/artpar/dockrelay/internal/core/commands"
)

var (
	// projectNamePattern follows the docker compose project name rules.
	projectNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	serviceNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	networkNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	restartPattern     = regexp.MustCompile(`^(no|always|unless-stopped|on-failure(:[0-9]+)?)$`)
)

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateName checks that name can be used as a compose project name.
func ValidateName(name string) error {
	if !projectNamePattern.MatchString(name) {
		return &ValidationError{
			Project: name,
			Field:   "name",
			Message: "must be lowercase letters, digits, '-' or '_' and start with a letter or digit",
			Err:     ErrInvalidName,
		}
	}
	return nil
}

// Validate checks a project before it is planned. The first problem found
// is returned.
func Validate(p Project) error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	if len(p.Services) == 0 {
		return &ValidationError{Project: p.Name, Field: "services", Message: "at least one service is required", Err: ErrNoServices}
	}

	networks := make(map[string]bool, len(p.Networks))
	for i, net := range p.Networks {
		field := fmt.Sprintf("networks[%d]", i)
		if !networkNamePattern.MatchString(net.Name) {
			return &ValidationError{Project: p.Name, Field: field, Message: fmt.Sprintf("invalid network name %q", net.Name), Err: ErrInvalidNetwork}
		}
		if networks[net.Name] {
			return &ValidationError{Project: p.Name, Field: field, Message: "network " + net.Name + " is defined more than once", Err: ErrInvalidNetwork}
		}
		networks[net.Name] = true
	}

	seen := make(map[string]bool, len(p.Services))
	for _, svc := range p.Services {
		if err := validateService(p.Name, svc); err != nil {
			return err
		}
		if seen[svc.Name] {
			return &ValidationError{
				Project: p.Name,
				Field:   "services." + svc.Name,
				Message: "service is defined more than once",
				Err:     ErrDuplicateService,
			}
		}
		seen[svc.Name] = true
	}

	for _, svc := range p.Services {
		for _, dep := range svc.DependsOn {
			if _, ok := p.Service(dep); !ok {
				return &ValidationError{
					Project: p.Name,
					Field:   "services." + svc.Name + ".depends_on",
					Message: "unknown service " + dep,
					Err:     ErrUnknownDependency,
				}
			}
		}
	}

	if _, err := Order(p.Services); err != nil {
		return &ValidationError{Project: p.Name, Field: "services", Message: err.Error(), Err: ErrCircularDependency}
	}
	return nil
}

func validateService(projectName string, svc Service) error {
	field := "services." + svc.Name
	if !serviceNamePattern.MatchString(svc.Name) {
		return &ValidationError{Project: projectName, Field: "services", Message: fmt.Sprintf("invalid service name %q", svc.Name), Err: ErrInvalidService}
	}
	if strings.TrimSpace(svc.Image) == "" {
		return &ValidationError{Project: projectName, Field: field + ".image", Message: "image is required", Err: ErrMissingImage}
	}
	for i, port := range svc.Ports {
		if err := commands.ValidatePort(port); err != nil {
			return &ValidationError{
				Project: projectName,
				Field:   fmt.Sprintf("%s.ports[%d]", field, i),
				Message: fmt.Sprintf("invalid port %q", port),
				Err:     ErrInvalidPort,
			}
		}
	}
	for key := range svc.Environment {
		if strings.TrimSpace(key) == "" || strings.Contains(key, "=") {
			return &ValidationError{Project: projectName, Field: field + ".environment", Message: fmt.Sprintf("invalid variable name %q", key), Err: ErrInvalidService}
		}
	}
	for i, vol := range svc.Volumes {
		if strings.TrimSpace(vol) == "" {
			return &ValidationError{Project: projectName, Field: fmt.Sprintf("%s.volumes[%d]", field, i), Message: "volume must not be empty", Err: ErrInvalidService}
		}
	}
	for i, net := range svc.Networks {
		if !networkNamePattern.MatchString(net) {
			return &ValidationError{
				Project: projectName,
				Field:   fmt.Sprintf("%s.networks[%d]", field, i),
				Message: fmt.Sprintf("invalid network name %q", net),
				Err:     ErrInvalidNetwork,
			}
		}
	}
	for key := range svc.Labels {
		if strings.TrimSpace(key) == "" {
			return &ValidationError{Project: projectName, Field: field + ".labels", Message: "label key must not be empty", Err: ErrInvalidService}
		}
	}
	if svc.Restart != "" && !restartPattern.MatchString(svc.Restart) {
		return &ValidationError{Project: projectName, Field: field + ".restart", Message: fmt.Sprintf("unsupported restart policy %q", svc.Restart), Err: ErrInvalidRestart}
	}
	return nil
}
