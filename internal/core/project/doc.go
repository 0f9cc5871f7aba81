// Package project models the declarative service descriptions a client
// defines before a plan/apply cycle.
//
// This package is part of the functional core. The Registry holds projects
// in memory for the lifetime of the process; everything else is pure.
//
// # Functions
//
//   - Validation: Check a project before planning (Validate)
//   - Ordering: Sort services by their dependencies (Order)
//   - Naming: Compose file paths and bookkeeping labels (ComposeFilePath, Labels)
//   - Planning: Render a compose file and the command that applies it (BuildPlan)
//   - Import: Turn an existing compose file into a project (FromCompose)
//
// # Usage
//
// The dispatch layer defines projects, builds a plan and hands the plan's
// command to the docker runner:
//
//	registry.Put(p)
//	plan, err := project.BuildPlan(p, projectsDir)
//	// write plan.ComposeYAML to plan.ComposeFile, then run plan.Command
package project
