package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/artpar/dockrelay/internal/core/commands"
	"github.com/artpar/dockrelay/internal/core/translate"
)

// =============================================================================
// Natural Language Tools
// =============================================================================

func (s *Server) naturalLanguageTools() []tool {
	return []tool{
		{
			def: mcp.NewTool("docker_natural_language",
				mcp.WithDescription("Translate a plain-English request into a docker command and run it"),
				mcp.WithString("phrase", mcp.Required(), mcp.Description(`What to do, e.g. "list running containers" or "show the last 50 logs for web"`)),
				mcp.WithBoolean("dry_run", mcp.Description("Only show the translated command without running it")),
			),
			handle: s.handleNaturalLanguage,
		},
		{
			def: mcp.NewTool("docker_translate",
				mcp.WithDescription("Show the docker command a phrase translates to without running it"),
				mcp.WithString("phrase", mcp.Required(), mcp.Description("Plain-English request")),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handle: s.handleTranslate,
		},
		{
			def: mcp.NewTool("list_phrases",
				mcp.WithDescription("List the phrase patterns docker_natural_language understands, in match order"),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			handle: s.handleListPhrases,
		},
		{
			def: mcp.NewTool("docker_command",
				mcp.WithDescription("Run docker with the given arguments, e.g. \"system df\""),
				mcp.WithString("args", mcp.Required(), mcp.Description("Arguments after the docker binary")),
			),
			handle: s.handleDockerCommand,
		},
	}
}

func (s *Server) handleNaturalLanguage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phrase := req.GetString("phrase", "")
	tr, err := s.translatePhrase("docker_natural_language", phrase)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if req.GetBool("dry_run", false) {
		return mcp.NewToolResultText(fmt.Sprintf("$ %s\n(dry run, matched %s)", tr.Command, tr.Rule)), nil
	}

	return s.run(ctx, invocation{
		tool:    "docker_natural_language",
		phrase:  phrase,
		command: tr.Command,
		echo:    true,
	}, nil)
}

func (s *Server) handleTranslate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tr, err := s.translatePhrase("docker_translate", req.GetString("phrase", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\n(matched %s)", tr.Command, tr.Rule)), nil
}

func (s *Server) handleListPhrases(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	for i, rule := range s.translator.Rules() {
		fmt.Fprintf(&b, "%3d. %s\n     pattern: %s\n", i+1, rule.Name, rule.Pattern)
		if rule.Exclude != nil {
			fmt.Fprintf(&b, "     unless:  %s\n", rule.Exclude)
		}
		fmt.Fprintf(&b, "     command: %s\n", rule.Template)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleDockerCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cmd, err := commands.Raw(req.GetString("args", ""))
	return s.run(ctx, invocation{tool: "docker_command", command: cmd}, err)
}

// translatePhrase turns an empty phrase into a missing-argument error and
// adds a hint to phrases nothing matched.
func (s *Server) translatePhrase(op, phrase string) (translate.Translation, error) {
	if err := commands.RequireArgs(op, "phrase", phrase); err != nil {
		return translate.Translation{}, err
	}

	tr, err := s.translator.Translate(phrase)
	switch {
	case errors.Is(err, translate.ErrEmptyPhrase):
		return translate.Translation{}, &commands.MissingArgumentError{Operation: op, Argument: "phrase"}
	case errors.Is(err, translate.ErrNoMatch):
		return translate.Translation{}, fmt.Errorf("%w; use list_phrases to see supported phrasings or docker_command to run docker directly", err)
	case err != nil:
		return translate.Translation{}, err
	}
	return tr, nil
}
