package project

import (
	"fmt"

	"github.com/artpar/dockrelay/internal/core/compose"
)

// FromCompose imports a compose file as project name, resolving ${VAR}
// references against env. Services that only have a build section are
// rejected because plans run prebuilt images.
func FromCompose(name, yamlContent string, env map[string]string) (Project, error) {
	if err := ValidateName(name); err != nil {
		return Project{}, err
	}

	spec, err := compose.ParseWithEnv(yamlContent, env)
	if err != nil {
		return Project{}, &ValidationError{Project: name, Message: err.Error(), Err: fmt.Errorf("%w: %w", ErrInvalidComposeInput, err)}
	}

	p := Project{Name: name, Services: make([]Service, 0, len(spec.Services))}
	for _, svc := range spec.Services {
		if svc.Image == "" {
			return Project{}, &ValidationError{
				Project: name,
				Field:   "services." + svc.Name + ".image",
				Message: "services built from source are not supported, set an image",
				Err:     ErrMissingImage,
			}
		}

		converted := Service{
			Name:      svc.Name,
			Image:     svc.Image,
			DependsOn: svc.DependsOn,
			Command:   svc.Command,
			Restart:   string(svc.Restart),
		}
		if len(svc.Environment) > 0 {
			converted.Environment = svc.Environment
		}
		if len(svc.Networks) > 0 {
			converted.Networks = svc.Networks
		}
		if len(svc.Labels) > 0 {
			converted.Labels = svc.Labels
		}
		for _, port := range svc.Ports {
			converted.Ports = append(converted.Ports, port.String())
		}
		for _, mount := range svc.Volumes {
			if mount.Type == compose.VolumeMountTypeTmpfs {
				continue
			}
			converted.Volumes = append(converted.Volumes, mount.String())
		}
		p.Services = append(p.Services, converted)
	}

	for _, net := range spec.Networks {
		imported := Network{Name: net.Name, Driver: net.Driver, External: net.External}
		if len(net.Labels) > 0 {
			imported.Labels = net.Labels
		}
		p.Networks = append(p.Networks, imported)
	}

	return p, nil
}
