package project

import (
	"path/filepath"

	"github.com/artpar/dockrelay/internal/core/commands"
)

// =============================================================================
// Resource Naming Functions
// =============================================================================

// ComposeFileName is the file written for every applied project.
const ComposeFileName = "compose.yaml"

// Label keys attached to every container and volume a plan creates.
const (
	LabelManaged = "com.dockrelay.managed"
	LabelProject = "com.dockrelay.project"
	LabelService = "com.dockrelay.service"
)

// ManagedLabel is the label filter selecting everything dockrelay applied.
const ManagedLabel = LabelManaged + "=true"

// ComposeFilePath returns where a project's compose file is written.
// Pattern: {dir}/{project}/compose.yaml
//
// Example:
//
//	ComposeFilePath("/var/lib/dockrelay", "shop") // "/var/lib/dockrelay/shop/compose.yaml"
func ComposeFilePath(dir, projectName string) string {
	return filepath.Join(dir, projectName, ComposeFileName)
}

// Labels returns the bookkeeping labels for one service of a project.
func Labels(projectName, serviceName string) map[string]string {
	return map[string]string{
		LabelManaged: "true",
		LabelProject: projectName,
		LabelService: serviceName,
	}
}

// managedFormat renders one line per managed container.
const managedFormat = `{{.Label "` + LabelProject + `"}}\t{{.Label "` + LabelService + `"}}\t{{.Names}}\t{{.Status}}`

// ListManagedCommand lists every container a plan created, with its project
// and service labels.
func ListManagedCommand() string {
	cmd, _ := commands.ListByLabel(ManagedLabel, managedFormat)
	return cmd
}
