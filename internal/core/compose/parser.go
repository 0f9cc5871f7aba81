package compose

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// loaderProjectName is only used while loading; callers name the project.
const loaderProjectName = "dockrelay-import"

// =============================================================================
// Parser Functions
// =============================================================================

// Parse parses Docker Compose YAML into a ParsedSpec. Variables resolve
// against an empty environment, so only their defaults apply.
// Services, networks and volumes are returned sorted by name.
func Parse(yamlContent string) (*ParsedSpec, error) {
	return ParseWithEnv(yamlContent, nil)
}

// ParseWithEnv is Parse with ${VAR} interpolation resolved against env.
func ParseWithEnv(yamlContent string, env map[string]string) (*ParsedSpec, error) {
	if strings.TrimSpace(yamlContent) == "" {
		return nil, ErrEmptyInput
	}

	project, err := loadComposeSpec(yamlContent, env)
	if err != nil {
		return nil, err
	}

	if err := checkUnsupportedFeatures(project); err != nil {
		return nil, err
	}

	if len(project.Services) == 0 {
		return nil, ErrNoServices
	}

	spec := &ParsedSpec{
		Services: make([]Service, 0, len(project.Services)),
		Networks: make([]Network, 0, len(project.Networks)),
		Volumes:  make([]Volume, 0, len(project.Volumes)),
	}

	for _, svc := range project.Services {
		converted, err := convertService(svc)
		if err != nil {
			return nil, err
		}
		spec.Services = append(spec.Services, converted)
	}
	sort.Slice(spec.Services, func(i, j int) bool { return spec.Services[i].Name < spec.Services[j].Name })

	if err := ValidateDependencies(spec.Services); err != nil {
		return nil, err
	}

	if err := validatePorts(spec.Services); err != nil {
		return nil, err
	}

	for name, net := range project.Networks {
		spec.Networks = append(spec.Networks, Network{
			Name:     name,
			Driver:   net.Driver,
			External: bool(net.External),
			Labels:   net.Labels,
		})
	}
	sort.Slice(spec.Networks, func(i, j int) bool { return spec.Networks[i].Name < spec.Networks[j].Name })

	for name, vol := range project.Volumes {
		spec.Volumes = append(spec.Volumes, Volume{
			Name:     name,
			Driver:   vol.Driver,
			External: bool(vol.External),
			Labels:   vol.Labels,
		})
	}
	sort.Slice(spec.Volumes, func(i, j int) bool { return spec.Volumes[i].Name < spec.Volumes[j].Name })

	return spec, nil
}

// loadComposeSpec loads a compose file using compose-go
func loadComposeSpec(yamlContent string, env map[string]string) (*types.Project, error) {
	// compose-go wants the raw mapping alongside the content
	var dict map[string]interface{}
	if err := yaml.Unmarshal([]byte(yamlContent), &dict); err != nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}
	if dict == nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}

	// the loader writes COMPOSE_PROJECT_NAME into the environment it is given
	environment := make(types.Mapping, len(env))
	for k, v := range env {
		environment[k] = v
	}

	project, err := loader.LoadWithContext(context.Background(), types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: []byte(yamlContent),
				Config:  dict,
			},
		},
		Environment: environment,
	}, func(opts *loader.Options) {
		opts.SetProjectName(loaderProjectName, false)
		opts.SkipValidation = false
		opts.SkipInterpolation = false
		opts.SkipNormalization = true
		opts.SkipExtends = true
		opts.ResolvePaths = false
	})
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "dependency cycle detected") {
			return nil, NewParseError("", "circular dependency detected", ErrCircularDependency)
		}
		if strings.Contains(errStr, "image") && strings.Contains(errStr, "build") {
			return nil, NewParseError("", "service must have image or build", ErrServiceNoImage)
		}
		return nil, NewParseError("", errStr, ErrInvalidYAML)
	}

	return project, nil
}

// checkUnsupportedFeatures rejects features a plan cannot carry.
func checkUnsupportedFeatures(project *types.Project) error {
	if len(project.Secrets) > 0 {
		return NewParseError("secrets", "secrets are not supported", ErrUnsupportedFeature)
	}
	if len(project.Configs) > 0 {
		return NewParseError("configs", "configs are not supported", ErrUnsupportedFeature)
	}
	for _, svc := range project.Services {
		if svc.Extends != nil && svc.Extends.File != "" {
			return NewParseError("services."+svc.Name+".extends", "extends is not supported", ErrUnsupportedFeature)
		}
	}
	return nil
}

// convertService converts a compose-go service to our Service type
func convertService(svc types.ServiceConfig) (Service, error) {
	service := Service{
		Name:        svc.Name,
		Image:       svc.Image,
		Command:     svc.Command,
		Environment: make(map[string]string),
		Labels:      make(map[string]string),
		Networks:    make([]string, 0),
		DependsOn:   make([]string, 0),
		Restart:     RestartPolicy(svc.Restart),
	}

	if svc.Build != nil {
		service.Build = &BuildConfig{
			Context:    svc.Build.Context,
			Dockerfile: svc.Build.Dockerfile,
		}
	}
	if service.Image == "" && service.Build == nil {
		return Service{}, NewParseError("services."+svc.Name, "service must have image or build", ErrServiceNoImage)
	}

	for _, p := range svc.Ports {
		var published uint32
		if p.Published != "" {
			pub, err := strconv.ParseUint(p.Published, 10, 32)
			if err != nil {
				return Service{}, NewParseError(
					fmt.Sprintf("services.%s.ports", svc.Name),
					"published port ranges are not supported: "+p.Published,
					ErrServiceInvalidPort,
				)
			}
			published = uint32(pub)
		}
		service.Ports = append(service.Ports, Port{
			Target:    p.Target,
			Published: published,
			Protocol:  p.Protocol,
			HostIP:    p.HostIP,
		})
	}

	for k, v := range svc.Environment {
		if v != nil {
			service.Environment[k] = *v
		}
	}

	for _, v := range svc.Volumes {
		mount := VolumeMount{
			Source:   v.Source,
			Target:   v.Target,
			ReadOnly: v.ReadOnly,
		}
		switch v.Type {
		case "bind":
			mount.Type = VolumeMountTypeBind
		case "volume":
			mount.Type = VolumeMountTypeVolume
		case "tmpfs":
			mount.Type = VolumeMountTypeTmpfs
		default:
			if strings.HasPrefix(v.Source, "./") || strings.HasPrefix(v.Source, "/") || strings.HasPrefix(v.Source, "~") {
				mount.Type = VolumeMountTypeBind
			} else {
				mount.Type = VolumeMountTypeVolume
			}
		}
		service.Volumes = append(service.Volumes, mount)
	}

	for net := range svc.Networks {
		service.Networks = append(service.Networks, net)
	}
	sort.Strings(service.Networks)

	for dep := range svc.DependsOn {
		service.DependsOn = append(service.DependsOn, dep)
	}
	sort.Strings(service.DependsOn)

	for k, v := range svc.Labels {
		service.Labels[k] = v
	}

	return service, nil
}

// ValidateDependencies checks that every dependency names a known service
// and that the dependency graph has no cycle.
func ValidateDependencies(services []Service) error {
	deps := make(map[string][]string, len(services))
	for _, svc := range services {
		deps[svc.Name] = svc.DependsOn
	}
	for _, svc := range services {
		for _, dep := range svc.DependsOn {
			if _, ok := deps[dep]; !ok {
				return NewParseError("services."+svc.Name+".depends_on", "unknown service "+dep, ErrUnknownDependency)
			}
		}
	}

	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	var hasCycle func(node string) bool
	hasCycle = func(node string) bool {
		visited[node] = true
		recStack[node] = true

		for _, dep := range deps[node] {
			if dep == node {
				return true
			}
			if !visited[dep] {
				if hasCycle(dep) {
					return true
				}
			} else if recStack[dep] {
				return true
			}
		}

		recStack[node] = false
		return false
	}

	for _, svc := range services {
		if !visited[svc.Name] && hasCycle(svc.Name) {
			return NewParseError("services."+svc.Name+".depends_on", "circular dependency detected", ErrCircularDependency)
		}
	}

	return nil
}

// validatePorts validates all port configurations
func validatePorts(services []Service) error {
	for _, svc := range services {
		for i, port := range svc.Ports {
			field := fmt.Sprintf("services.%s.ports[%d]", svc.Name, i)
			if port.Target == 0 {
				return NewParseError(field, "target port cannot be 0", ErrServiceInvalidPort)
			}
			if port.Target > 65535 {
				return NewParseError(field, "target port must be <= 65535", ErrServiceInvalidPort)
			}
			if port.Published > 65535 {
				return NewParseError(field, "published port must be <= 65535", ErrServiceInvalidPort)
			}
		}
	}
	return nil
}

// =============================================================================
// Variable Extraction
// =============================================================================

// variablePlaceholderRegex matches ${VAR_NAME} or ${VAR_NAME:-default}
var variablePlaceholderRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-[^}]*)?\}`)

// ExtractVariablesFromYAML returns the unique ${VAR} names referenced in raw
// YAML, in order of first appearance. compose-go interpolates these while
// loading, so callers use this to tell the user what was substituted.
func ExtractVariablesFromYAML(yamlContent string) []string {
	seen := make(map[string]bool)
	var vars []string

	for _, match := range variablePlaceholderRegex.FindAllStringSubmatch(yamlContent, -1) {
		if len(match) >= 2 && !seen[match[1]] {
			seen[match[1]] = true
			vars = append(vars, match[1])
		}
	}

	return vars
}
