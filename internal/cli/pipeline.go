package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"option-tagger/internal/analyze"
	"option-tagger/internal/diagnostic"
	"option-tagger/internal/overlay"
	"option-tagger/internal/plan"
	"option-tagger/internal/schema"
)

type pipelineResult struct {
	Graph  *analyze.TypeGraph
	Plan   *plan.ResolvedPlan
	Schema *schema.Builder
}

// runPipeline loads packages and the overlay, then resolves every struct.
// Diagnostics are left in the plan; see diagnosticsError.
func runPipeline(ctx context.Context, s settings, patterns []string, withSchema bool) (*pipelineResult, error) {
	graph, err := analyze.NewAnalyzer().LoadPackages(defaultPatterns(patterns)...)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to load packages").
			WithCause(err)
	}

	var ov *overlay.File
	if s.Overlay != "" {
		ov, err = overlay.LoadFile(s.Overlay)
		if err != nil {
			code := errbuilder.CodeInvalidArgument
			if errors.Is(err, fs.ErrNotExist) {
				code = errbuilder.CodeNotFound
			}
			return nil, errbuilder.New().
				WithCode(code).
				WithMsg("failed to load overlay " + s.Overlay).
				WithCause(err)
		}
	}

	resolver := plan.NewResolver(graph, ov, s.resolutionConfig())

	var builder *schema.Builder
	if withSchema {
		builder = schema.NewBuilder(graph)
		resolver.WithSchemaSink(builder)
	}

	p, err := resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("packages", len(graph.Packages)).
		Int("structs", len(p.Structs)).
		Msg("pipeline finished")

	return &pipelineResult{Graph: graph, Plan: p, Schema: builder}, nil
}

func defaultPatterns(patterns []string) []string {
	if len(patterns) == 0 {
		return []string{"./..."}
	}
	return patterns
}

// writeDiagnostics prints warnings and errors, one per line.
func writeDiagnostics(w io.Writer, diags diagnostic.Diagnostics) {
	for _, d := range diags.Errors {
		fmt.Fprintf(w, "error: %s\n", d.String())
	}
	for _, d := range diags.Warnings {
		fmt.Fprintf(w, "warning: %s\n", d.String())
	}
}

// diagnosticsError turns error diagnostics into a failed precondition.
func diagnosticsError(diags diagnostic.Diagnostics) error {
	if !diags.HasErrors() {
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("%d error(s), %d warning(s); nothing is rewritten", len(diags.Errors), len(diags.Warnings))).
		WithCause(diags.Error())
}

// sourceDirs returns the directories holding the loaded packages.
func sourceDirs(graph *analyze.TypeGraph) []string {
	seen := map[string]struct{}{}
	for _, p := range graph.Packages {
		for _, name := range p.Names {
			seen[filepath.Dir(name)] = struct{}{}
		}
	}
	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}
