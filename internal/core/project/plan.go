package project

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/artpar/dockrelay/internal/core/commands"
	"github.com/artpar/dockrelay/internal/core/compose"
)

// Plan is everything needed to apply a project: the rendered compose file,
// where it goes and the command that brings it up.
type Plan struct {
	Project     string   `json:"project"`
	Order       []string `json:"order"`
	ComposeYAML string   `json:"compose_yaml"`
	ComposeFile string   `json:"compose_file"`
	Command     string   `json:"command"`
}

// composeFile is the subset of the compose schema a plan renders.
type composeFile struct {
	Name     string                    `yaml:"name"`
	Services map[string]composeService `yaml:"services"`
	Networks map[string]composeNetwork `yaml:"networks,omitempty"`
	Volumes  map[string]composeVolume  `yaml:"volumes,omitempty"`
}

type composeService struct {
	Image       string            `yaml:"image"`
	Command     []string          `yaml:"command,omitempty"`
	Ports       []string          `yaml:"ports,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
	Volumes     []string          `yaml:"volumes,omitempty"`
	Networks    []string          `yaml:"networks,omitempty"`
	DependsOn   []string          `yaml:"depends_on,omitempty"`
	Restart     string            `yaml:"restart,omitempty"`
	Labels      map[string]string `yaml:"labels"`
}

type composeNetwork struct {
	Driver   string            `yaml:"driver,omitempty"`
	External bool              `yaml:"external,omitempty"`
	Labels   map[string]string `yaml:"labels,omitempty"`
}

type composeVolume struct {
	Labels map[string]string `yaml:"labels"`
}

// =============================================================================
// Planning Functions
// =============================================================================

// BuildPlan validates p, orders its services and renders the compose file
// that dir/<project>/compose.yaml will hold. The rendered file is parsed
// back through the compose loader so a plan that docker compose would
// reject never reaches apply.
func BuildPlan(p Project, dir string) (*Plan, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}

	order, err := Order(p.Services)
	if err != nil {
		return nil, err
	}

	rendered, err := RenderCompose(p)
	if err != nil {
		return nil, err
	}

	if _, err := compose.Parse(rendered); err != nil {
		return nil, &ValidationError{Project: p.Name, Message: "rendered compose file is invalid: " + err.Error(), Err: ErrInvalidComposeInput}
	}

	file := ComposeFilePath(dir, p.Name)
	cmd, err := commands.ComposeUp(p.Name, file)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Project:     p.Name,
		Order:       order,
		ComposeYAML: rendered,
		ComposeFile: file,
		Command:     cmd,
	}, nil
}

// RenderCompose renders p as a compose file. Every service, named volume
// and project-owned network carries the dockrelay bookkeeping labels.
// Values are written literally: "$" is escaped so compose never
// interpolates them.
func RenderCompose(p Project) (string, error) {
	file := composeFile{
		Name:     p.Name,
		Services: make(map[string]composeService, len(p.Services)),
	}

	for _, net := range p.Networks {
		file.addNetwork(p.Name, net)
	}

	for _, svc := range p.Services {
		labels := escapeValues(svc.Labels)
		if labels == nil {
			labels = make(map[string]string, 3)
		}
		for k, v := range Labels(p.Name, svc.Name) {
			labels[k] = v
		}
		deps := append([]string(nil), svc.DependsOn...)
		sort.Strings(deps)

		file.Services[svc.Name] = composeService{
			Image:       escapeDollar(svc.Image),
			Command:     escapeAll(svc.Command),
			Ports:       escapeAll(svc.Ports),
			Environment: escapeValues(svc.Environment),
			Volumes:     escapeAll(svc.Volumes),
			Networks:    svc.Networks,
			DependsOn:   deps,
			Restart:     svc.Restart,
			Labels:      labels,
		}

		for _, name := range svc.Networks {
			if _, ok := file.Networks[name]; !ok && name != defaultNetwork {
				file.addNetwork(p.Name, Network{Name: name})
			}
		}

		for _, vol := range svc.Volumes {
			name, ok := namedVolume(vol)
			if !ok {
				continue
			}
			if file.Volumes == nil {
				file.Volumes = make(map[string]composeVolume)
			}
			file.Volumes[name] = composeVolume{Labels: map[string]string{
				LabelManaged: "true",
				LabelProject: p.Name,
			}}
		}
	}

	out, err := yaml.Marshal(file)
	if err != nil {
		return "", fmt.Errorf("render compose file for %s: %w", p.Name, err)
	}
	return string(out), nil
}

// defaultNetwork is the network compose creates for every project.
const defaultNetwork = "default"

// addNetwork declares net. External networks are referenced as-is;
// the project's own networks are labelled like its volumes.
func (f *composeFile) addNetwork(projectName string, net Network) {
	if f.Networks == nil {
		f.Networks = make(map[string]composeNetwork)
	}
	if net.External {
		f.Networks[net.Name] = composeNetwork{External: true}
		return
	}
	labels := escapeValues(net.Labels)
	if labels == nil {
		labels = make(map[string]string, 2)
	}
	labels[LabelManaged] = "true"
	labels[LabelProject] = projectName
	f.Networks[net.Name] = composeNetwork{Driver: net.Driver, Labels: labels}
}

// escapeDollar escapes s for compose interpolation.
func escapeDollar(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

func escapeAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = escapeDollar(v)
	}
	return out
}

func escapeValues(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = escapeDollar(v)
	}
	return out
}

// namedVolume returns the volume name of a short-syntax mount whose source
// is a named volume rather than a host path.
func namedVolume(mount string) (string, bool) {
	source, _, ok := strings.Cut(mount, ":")
	if !ok || source == "" {
		return "", false
	}
	if strings.HasPrefix(source, ".") || strings.HasPrefix(source, "/") || strings.HasPrefix(source, "~") || strings.HasPrefix(source, "$") {
		return "", false
	}
	return source, true
}

// Summary renders the plan for a human reader.
func (p *Plan) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "project: %s\n", p.Project)
	fmt.Fprintf(&b, "start order: %s\n", strings.Join(p.Order, " -> "))
	fmt.Fprintf(&b, "compose file: %s\n", p.ComposeFile)
	fmt.Fprintf(&b, "command: %s\n\n", p.Command)
	b.WriteString(p.ComposeYAML)
	return b.String()
}
