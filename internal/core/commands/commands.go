package commands

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/docker/go-connections/nat"
)

// Binary is the leading word of every command built here.
const Binary = "docker"

// Lifecycle verbs accepted by Lifecycle.
const (
	VerbStart   = "start"
	VerbStop    = "stop"
	VerbRestart = "restart"
	VerbPause   = "pause"
	VerbUnpause = "unpause"
	VerbKill    = "kill"
)

var lifecycleVerbs = map[string]bool{
	VerbStart: true, VerbStop: true, VerbRestart: true,
	VerbPause: true, VerbUnpause: true, VerbKill: true,
}

// =============================================================================
// Containers
// =============================================================================

// ListContainers returns "docker ps", with -a when all is set.
func ListContainers(all bool) string {
	if all {
		return join("ps", "-a")
	}
	return join("ps")
}

// Logs returns "docker logs [--tail N] <container>". A tail of 0 means all lines.
func Logs(container string, tail int) (string, error) {
	if err := RequireArgs("container_logs", "container", container); err != nil {
		return "", err
	}
	if err := checkNames("container", container); err != nil {
		return "", err
	}
	if tail < 0 {
		return "", &InvalidArgumentError{Argument: "tail", Value: strconv.Itoa(tail), Message: "must not be negative"}
	}
	if tail > 0 {
		return join("logs", "--tail", strconv.Itoa(tail), quote(container)), nil
	}
	return join("logs", quote(container)), nil
}

// Lifecycle returns "docker <verb> <container>" for start, stop, restart,
// pause, unpause and kill.
func Lifecycle(verb, container string) (string, error) {
	if !lifecycleVerbs[verb] {
		return "", &InvalidArgumentError{Argument: "verb", Value: verb, Message: "unsupported lifecycle verb"}
	}
	if err := RequireArgs(verb+"_container", "container", container); err != nil {
		return "", err
	}
	if err := checkNames("container", container); err != nil {
		return "", err
	}
	return join(verb, quote(container)), nil
}

// Remove returns "docker rm [-f] <container>".
func Remove(container string, force bool) (string, error) {
	if err := RequireArgs("remove_container", "container", container); err != nil {
		return "", err
	}
	if err := checkNames("container", container); err != nil {
		return "", err
	}
	if force {
		return join("rm", "-f", quote(container)), nil
	}
	return join("rm", quote(container)), nil
}

// Inspect returns "docker inspect <container>".
func Inspect(container string) (string, error) {
	if err := RequireArgs("inspect_container", "container", container); err != nil {
		return "", err
	}
	if err := checkNames("container", container); err != nil {
		return "", err
	}
	return join("inspect", quote(container)), nil
}

// Stats returns a single stats sample for one container.
func Stats(container string) (string, error) {
	if err := RequireArgs("container_stats", "container", container); err != nil {
		return "", err
	}
	if err := checkNames("container", container); err != nil {
		return "", err
	}
	return join("stats", "--no-stream", quote(container)), nil
}

// Top returns "docker top <container>".
func Top(container string) (string, error) {
	if err := RequireArgs("container_top", "container", container); err != nil {
		return "", err
	}
	if err := checkNames("container", container); err != nil {
		return "", err
	}
	return join("top", quote(container)), nil
}

// Exec returns "docker exec <container> <command>". The command is appended
// as written so its own quoting is kept.
func Exec(container, command string) (string, error) {
	if err := RequireArgs("exec_container", "container", container, "command", command); err != nil {
		return "", err
	}
	if err := checkNames("container", container); err != nil {
		return "", err
	}
	return join("exec", quote(container), strings.TrimSpace(command)), nil
}

// RunSpec describes a "docker run" invocation.
type RunSpec struct {
	Image      string
	Name       string
	Ports      []string // "8080:80", "127.0.0.1:53:53/udp"
	Env        []string // "KEY=VALUE"
	Volumes    []string // "data:/var/lib/data", "/host:/ctr:ro"
	Command    string
	Foreground bool // Run attached instead of -d
	Remove     bool // --rm
}

// Run returns a "docker run" command for spec.
func Run(spec RunSpec) (string, error) {
	if err := RequireArgs("run_container", "image", spec.Image); err != nil {
		return "", err
	}
	if err := checkNames("image", spec.Image, "name", spec.Name); err != nil {
		return "", err
	}

	parts := []string{"run"}
	if !spec.Foreground {
		parts = append(parts, "-d")
	}
	if spec.Remove {
		parts = append(parts, "--rm")
	}
	if !isBlank(spec.Name) {
		parts = append(parts, "--name", quote(spec.Name))
	}
	for _, p := range spec.Ports {
		if err := ValidatePort(p); err != nil {
			return "", err
		}
		parts = append(parts, "-p", quote(p))
	}
	for _, e := range spec.Env {
		if err := ValidateEnv(e); err != nil {
			return "", err
		}
		parts = append(parts, "-e", quote(e))
	}
	for _, v := range spec.Volumes {
		if isBlank(v) {
			return "", &InvalidArgumentError{Argument: "volume", Value: v, Message: "must not be empty"}
		}
		parts = append(parts, "-v", quote(v))
	}
	parts = append(parts, quote(spec.Image))
	if cmd := strings.TrimSpace(spec.Command); cmd != "" {
		parts = append(parts, cmd)
	}
	return join(parts...), nil
}

// ValidatePort checks a publish spec the way the docker CLI parses it.
func ValidatePort(spec string) error {
	if _, err := nat.ParsePortSpec(spec); err != nil {
		return &InvalidArgumentError{Argument: "port", Value: spec, Message: err.Error()}
	}
	return nil
}

// ValidateEnv checks an environment entry is KEY=VALUE.
func ValidateEnv(entry string) error {
	key, _, ok := strings.Cut(entry, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return &InvalidArgumentError{Argument: "env", Value: entry, Message: "expected KEY=VALUE"}
	}
	return nil
}

// =============================================================================
// Images, Volumes, Networks
// =============================================================================

// ListImages returns "docker images".
func ListImages() string { return join("images") }

// Pull returns "docker pull <image>".
func Pull(image string) (string, error) {
	if err := RequireArgs("pull_image", "image", image); err != nil {
		return "", err
	}
	if err := checkNames("image", image); err != nil {
		return "", err
	}
	return join("pull", quote(image)), nil
}

// RemoveImage returns "docker rmi [-f] <image>".
func RemoveImage(image string, force bool) (string, error) {
	if err := RequireArgs("remove_image", "image", image); err != nil {
		return "", err
	}
	if err := checkNames("image", image); err != nil {
		return "", err
	}
	if force {
		return join("rmi", "-f", quote(image)), nil
	}
	return join("rmi", quote(image)), nil
}

// ListVolumes returns "docker volume ls".
func ListVolumes() string { return join("volume", "ls") }

// ListNetworks returns "docker network ls".
func ListNetworks() string { return join("network", "ls") }

// ListByLabel lists all containers carrying label, rendered with format.
func ListByLabel(label, format string) (string, error) {
	if err := RequireArgs("list_by_label", "label", label); err != nil {
		return "", err
	}
	parts := []string{"ps", "-a", "--filter", quote("label=" + label)}
	if format != "" {
		parts = append(parts, "--format", quote(format))
	}
	return join(parts...), nil
}

// =============================================================================
// Backup and Export
// =============================================================================

// ExportContainer returns "docker export -o <output> <container>".
func ExportContainer(container, output string) (string, error) {
	if err := RequireArgs("export_container", "container", container, "output", output); err != nil {
		return "", err
	}
	if err := checkNames("container", container, "output", output); err != nil {
		return "", err
	}
	return join("export", "-o", quote(output), quote(container)), nil
}

// SaveImage returns "docker save -o <output> <image>".
func SaveImage(image, output string) (string, error) {
	if err := RequireArgs("save_image", "image", image, "output", output); err != nil {
		return "", err
	}
	if err := checkNames("image", image, "output", output); err != nil {
		return "", err
	}
	return join("save", "-o", quote(output), quote(image)), nil
}

// BackupVolume archives a volume into destDir/archive using a throwaway
// helper container that mounts the volume read-only.
func BackupVolume(volume, destDir, archive, helperImage string) (string, error) {
	if err := RequireArgs("backup_volume",
		"volume", volume, "destination", destDir, "archive", archive, "helper_image", helperImage); err != nil {
		return "", err
	}
	if err := checkMountSource("volume", volume); err != nil {
		return "", err
	}
	if err := checkMountSource("destination", destDir); err != nil {
		return "", err
	}
	if err := checkNames("helper_image", helperImage); err != nil {
		return "", err
	}
	return join("run", "--rm",
		"-v", quote(volume+":/volume:ro"),
		"-v", quote(destDir+":/backup"),
		quote(helperImage),
		"tar", "czf", quote("/backup/"+archive), "-C", "/volume", ".",
	), nil
}

// RestoreVolume unpacks archivePath into a volume using a helper container.
func RestoreVolume(volume, archivePath, helperImage string) (string, error) {
	if err := RequireArgs("restore_volume",
		"volume", volume, "archive", archivePath, "helper_image", helperImage); err != nil {
		return "", err
	}
	if err := checkMountSource("volume", volume); err != nil {
		return "", err
	}
	if err := checkMountSource("archive", filepath.Dir(archivePath)); err != nil {
		return "", err
	}
	if err := checkNames("helper_image", helperImage); err != nil {
		return "", err
	}
	return join("run", "--rm",
		"-v", quote(volume+":/volume"),
		"-v", quote(filepath.Dir(archivePath)+":/backup:ro"),
		quote(helperImage),
		"tar", "xzf", quote("/backup/"+filepath.Base(archivePath)), "-C", "/volume",
	), nil
}

// =============================================================================
// Compose Projects
// =============================================================================

// ComposeUp returns "docker compose -p <project> -f <file> up -d".
func ComposeUp(project, file string) (string, error) {
	if err := RequireArgs("project_apply", "project", project, "file", file); err != nil {
		return "", err
	}
	if err := checkNames("project", project, "file", file); err != nil {
		return "", err
	}
	return join("compose", "-p", quote(project), "-f", quote(file), "up", "-d"), nil
}

// ComposeDown returns "docker compose -p <project> down [-v]".
func ComposeDown(project string, removeVolumes bool) (string, error) {
	if err := RequireArgs("project_down", "project", project); err != nil {
		return "", err
	}
	if err := checkNames("project", project); err != nil {
		return "", err
	}
	if removeVolumes {
		return join("compose", "-p", quote(project), "down", "-v"), nil
	}
	return join("compose", "-p", quote(project), "down"), nil
}

// ComposePs returns "docker compose -p <project> ps".
func ComposePs(project string) (string, error) {
	if err := RequireArgs("project_status", "project", project); err != nil {
		return "", err
	}
	if err := checkNames("project", project); err != nil {
		return "", err
	}
	return join("compose", "-p", quote(project), "ps"), nil
}

// Raw prefixes args with the docker binary. Args keep their own quoting.
func Raw(args string) (string, error) {
	if err := RequireArgs("docker_command", "args", args); err != nil {
		return "", err
	}
	args = strings.TrimSpace(args)
	if rest, ok := strings.CutPrefix(args, Binary+" "); ok {
		args = strings.TrimSpace(rest)
	}
	return join(args), nil
}
