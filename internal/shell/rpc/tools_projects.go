package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/artpar/dockrelay/internal/core/commands"
	"github.com/artpar/dockrelay/internal/core/compose"
	"github.com/artpar/dockrelay/internal/core/project"
	"github.com/artpar/dockrelay/internal/core/relay"
)

// =============================================================================
// Project Tools
// =============================================================================

func projectArg() mcp.ToolOption {
	return mcp.WithString("project", mcp.Required(), mcp.Description("Project name: lowercase letters, digits, '-' and '_'"))
}

func (s *Server) projectTools() []tool {
	return []tool{
		{
			def: mcp.NewTool("project_define",
				mcp.WithDescription("Define or replace a multi-container project from a service list or a compose file"),
				projectArg(),
				mcp.WithArray("services",
					mcp.Description(`Services as objects: [{"name":"web","image":"nginx","ports":["8080:80"],"environment":{"K":"v"},"volumes":["data:/data"],"depends_on":["db"],"command":["nginx","-g","daemon off;"],"restart":"always","networks":["backend"],"labels":{"tier":"web"}}]. A JSON string holding the array is accepted too.`),
					mcp.Items(map[string]any{"type": "object"}),
				),
				mcp.WithString("compose_yaml", mcp.Description("A docker compose file to import instead of services")),
			),
			handle: s.handleProjectDefine,
		},
		{
			def: mcp.NewTool("project_plan",
				mcp.WithDescription("Show the start order, compose file and command project_apply would use"),
				projectArg(),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handle: s.handleProjectPlan,
		},
		{
			def: mcp.NewTool("project_apply",
				mcp.WithDescription("Write the project's compose file and bring it up with docker compose"),
				projectArg(),
			),
			handle: s.handleProjectApply,
		},
		{
			def: mcp.NewTool("project_down",
				mcp.WithDescription("Stop and remove a project's containers and networks"),
				projectArg(),
				mcp.WithBoolean("remove_volumes", mcp.Description("Also remove the project's named volumes")),
				mcp.WithDestructiveHintAnnotation(true),
			),
			handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cmd, err := commands.ComposeDown(req.GetString("project", ""), req.GetBool("remove_volumes", false))
				return s.run(ctx, invocation{tool: "project_down", command: cmd}, err)
			},
		},
		{
			def: mcp.NewTool("project_status",
				mcp.WithDescription("Show the containers of a project"),
				projectArg(),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handle: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				cmd, err := commands.ComposePs(req.GetString("project", ""))
				return s.run(ctx, invocation{tool: "project_status", command: cmd}, err)
			},
		},
		{
			def: mcp.NewTool("project_forget",
				mcp.WithDescription("Drop a project definition. Running containers are left alone."),
				projectArg(),
			),
			handle: s.handleProjectForget,
		},
		{
			def: mcp.NewTool("list_projects",
				mcp.WithDescription("List defined projects and the containers dockrelay has applied"),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handle: s.handleListProjects,
		},
	}
}

func (s *Server) handleProjectDefine(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("project", "")
	if err := commands.RequireArgs("project_define", "project", name); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var (
		p    project.Project
		err  error
		note string
	)
	if yamlContent := req.GetString("compose_yaml", ""); strings.TrimSpace(yamlContent) != "" {
		p, err = project.FromCompose(name, yamlContent, environ())
		if vars := compose.ExtractVariablesFromYAML(yamlContent); len(vars) > 0 {
			note = fmt.Sprintf("\nvariables substituted from the server environment: %s", strings.Join(vars, ", "))
		}
	} else {
		var services []project.Service
		services, err = decodeServices(req.GetArguments()["services"])
		p = project.Project{Name: name, Services: services}
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := project.Validate(p); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	order, _ := project.Order(p.Services)
	s.projects.Put(p)

	s.logger.Info("project defined", "project", name, "services", len(p.Services))
	return mcp.NewToolResultText(fmt.Sprintf("project %s defined with %d service(s)\nstart order: %s%s",
		name, len(p.Services), strings.Join(order, " -> "), note)), nil
}

// environ returns the server's environment as a map for compose
// interpolation.
func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}

// decodeServices accepts the services argument as a JSON array or as a
// string holding one.
func decodeServices(raw any) ([]project.Service, error) {
	var data []byte
	switch v := raw.(type) {
	case nil:
		return nil, &commands.MissingArgumentError{Operation: "project_define", Argument: "services"}
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, &commands.MissingArgumentError{Operation: "project_define", Argument: "services"}
		}
		data = []byte(v)
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			return nil, &commands.InvalidArgumentError{Argument: "services", Value: fmt.Sprint(v), Message: err.Error()}
		}
	}

	var services []project.Service
	if err := json.Unmarshal(data, &services); err != nil {
		return nil, &commands.InvalidArgumentError{Argument: "services", Value: string(data), Message: "expected a JSON array of services: " + err.Error()}
	}
	if len(services) == 0 {
		return nil, &commands.MissingArgumentError{Operation: "project_define", Argument: "services"}
	}
	return services, nil
}

func (s *Server) handleProjectPlan(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan, err := s.planProject("project_plan", req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(plan.Summary()), nil
}

func (s *Server) handleProjectApply(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan, err := s.planProject("project_apply", req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := writeComposeFile(plan); err != nil {
		return mcp.NewToolResultError(relay.FormatFailure(plan.Command, "", err)), nil
	}

	s.logger.Info("applying project", "project", plan.Project, "file", plan.ComposeFile)
	return s.run(ctx, invocation{tool: "project_apply", command: plan.Command, echo: true}, nil)
}

func (s *Server) planProject(op, name string) (*project.Plan, error) {
	if err := commands.RequireArgs(op, "project", name); err != nil {
		return nil, err
	}
	p, err := s.projects.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w; define it first with project_define", err)
	}
	return project.BuildPlan(p, s.config.ProjectsDir)
}

// writeComposeFile writes the plan's compose file, creating its directory.
func writeComposeFile(plan *project.Plan) error {
	if err := os.MkdirAll(filepath.Dir(plan.ComposeFile), 0o755); err != nil {
		return fmt.Errorf("create project directory: %w", err)
	}
	if err := os.WriteFile(plan.ComposeFile, []byte(plan.ComposeYAML), 0o644); err != nil {
		return fmt.Errorf("write compose file: %w", err)
	}
	return nil
}

func (s *Server) handleProjectForget(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("project", "")
	if err := commands.RequireArgs("project_forget", "project", name); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !s.projects.Delete(name) {
		return mcp.NewToolResultError((&project.NotFoundError{Name: name}).Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("project %s forgotten; its containers were not touched", name)), nil
}

func (s *Server) handleListProjects(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder

	defined := s.projects.List()
	if len(defined) == 0 {
		b.WriteString("no projects defined\n")
	} else {
		b.WriteString("defined projects:\n")
		for _, p := range defined {
			fmt.Fprintf(&b, "  %s (%s) updated %s\n", p.Name, strings.Join(p.ServiceNames(), ", "), p.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
	}

	cmd := project.ListManagedCommand()
	res, err := s.execute(ctx, invocation{tool: "list_projects", command: cmd})
	b.WriteString("\napplied containers:\n")
	switch {
	case err != nil:
		stderr := ""
		if res != nil {
			stderr = res.Stderr
		}
		b.WriteString(relay.FormatFailure(cmd, stderr, err))
	case strings.TrimSpace(res.Stdout) == "":
		b.WriteString("  none")
	default:
		b.WriteString(res.Stdout)
	}
	return mcp.NewToolResultText(b.String()), nil
}
