package plan

import (
	"context"
	"fmt"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"option-tagger/internal/analyze"
	"option-tagger/internal/diagnostic"
	"option-tagger/internal/directive"
	"option-tagger/internal/marker"
	"option-tagger/internal/match"
	"option-tagger/internal/overlay"
)

// ResolutionConfig holds configuration for the resolution process.
type ResolutionConfig struct {
	// MarkerTag is the struct tag key holding markers.
	MarkerTag string
	// DirectiveTag is the struct tag key holding serialization directives.
	DirectiveTag string
	// SkipPolicy decides how skip plus markers is treated.
	SkipPolicy SkipPolicy
	// Workers bounds the number of structs resolved in parallel.
	Workers int
}

// DefaultConfig returns the default resolution configuration.
func DefaultConfig() ResolutionConfig {
	return ResolutionConfig{
		MarkerTag:    marker.DefaultTagKey,
		DirectiveTag: "json",
		SkipPolicy:   SkipReject,
		Workers:      4,
	}
}

// SchemaSink receives every resolved struct, in declaration order, after a
// resolution without errors.
type SchemaSink interface {
	AddStruct(s *ResolvedStruct) error
}

// Resolver performs the resolution pipeline.
type Resolver struct {
	graph        *analyze.TypeGraph
	index        overlay.Index
	overlayDiags *diagnostic.Diagnostics
	config       ResolutionConfig
	sink         SchemaSink
}

// NewResolver creates a new Resolver. The overlay is optional.
func NewResolver(
	graph *analyze.TypeGraph,
	overlayDef *overlay.File,
	config ResolutionConfig,
) *Resolver {
	index, diags := overlay.Build(overlayDef, graph)

	return &Resolver{
		graph:        graph,
		index:        index,
		overlayDiags: diags,
		config:       config,
	}
}

// WithSchemaSink sets the collaborator that receives schema information.
func (r *Resolver) WithSchemaSink(sink SchemaSink) *Resolver {
	r.sink = sink
	return r
}

// structResult is the per-struct slot filled by a worker.
type structResult struct {
	resolved ResolvedStruct
	diags    diagnostic.Diagnostics
}

// Resolve resolves every field of every struct in the graph. Diagnostics are
// collected for all fields before returning; the returned error is reserved
// for configuration problems, cancellation and sink failures.
func (r *Resolver) Resolve(ctx context.Context) (*ResolvedPlan, error) {
	assert.NotEmpty(ctx, r.config.MarkerTag, "marker tag must be set")
	assert.NotEmpty(ctx, r.config.DirectiveTag, "directive tag must be set")

	if r.config.MarkerTag == r.config.DirectiveTag {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("marker tag and directive tag must differ, both are %q", r.config.MarkerTag))
	}

	if !r.config.SkipPolicy.Valid() {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown skip policy %q (want %q or %q)", r.config.SkipPolicy, SkipReject, SkipIgnore))
	}

	plan := &ResolvedPlan{
		TypeGraph: r.graph,
	}
	plan.Diagnostics.Merge(*r.overlayDiags)

	structs := r.graph.OrderedStructs()
	results := make([]structResult, len(structs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.config.Workers, 1))

	for i, s := range structs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			results[i] = r.resolveStruct(s)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("resolution interrupted").
			WithCause(err)
	}

	// Merge in declaration order regardless of scheduling.
	for i := range results {
		plan.Structs = append(plan.Structs, results[i].resolved)
		plan.Diagnostics.Merge(results[i].diags)
	}

	log.Debug().
		Int("structs", len(plan.Structs)).
		Int("errors", len(plan.Diagnostics.Errors)).
		Int("warnings", len(plan.Diagnostics.Warnings)).
		Msg("resolution finished")

	if r.sink == nil || plan.Diagnostics.HasErrors() {
		return plan, nil
	}

	for i := range plan.Structs {
		if err := r.sink.AddStruct(&plan.Structs[i]); err != nil {
			return plan, fmt.Errorf("schema sink %s: %w", plan.Structs[i].Struct.ID.Short(), err)
		}
	}

	return plan, nil
}

// resolveStruct resolves the fields of one struct. It only reads shared
// state, so structs can be resolved concurrently.
func (r *Resolver) resolveStruct(s *analyze.StructInfo) structResult {
	res := structResult{
		resolved: ResolvedStruct{
			Struct: s,
			Fields: make([]ResolvedField, 0, len(s.Fields)),
		},
	}

	for i := range s.Fields {
		rf := r.resolveField(s, &s.Fields[i], &res.diags)
		res.resolved.Fields = append(res.resolved.Fields, rf)
	}

	return res
}

// resolveField runs extract, select and synthesize for one field.
func (r *Resolver) resolveField(
	s *analyze.StructInfo,
	f *analyze.FieldInfo,
	diags *diagnostic.Diagnostics,
) ResolvedField {
	typeName := s.ID.Short()
	position := positionOf(f)

	value, present := f.Tag.Lookup(r.config.DirectiveTag)
	tag := directive.Parse(value, present)

	rf := ResolvedField{
		Field:       f,
		Path:        f.Path,
		Original:    tag,
		Synthesized: tag,
	}

	if _, err := directive.ParseFieldTag(string(f.Tag)); err != nil {
		rf.Case = CaseConflict
		diags.Add(diagnostic.Diagnostic{
			Severity:  diagnostic.DiagnosticError,
			Code:      diagnostic.CodeMalformedTag,
			Message:   err.Error(),
			TypeName:  typeName,
			FieldPath: f.Path,
			Position:  position,
		})

		return rf
	}

	markerValue, _ := f.Tag.Lookup(r.config.MarkerTag)
	rf.Markers = marker.Union(marker.Parse(markerValue), r.index.Markers(s.ID, f.Path))

	desc := FieldDescriptor{
		Path:       f.Path,
		Name:       f.Name,
		Shape:      f.Shape,
		Layer:      f.Layer,
		TypeString: analyze.TypeString(f.Type),
		Markers:    rf.Markers,
		Tag:        tag,
	}

	rf.Intent = Extract(desc)

	for _, tok := range rf.Intent.UnknownMarkers {
		msg := fmt.Sprintf("marker %q is not recognized and is ignored", tok)
		suggestions := match.Suggest(tok, marker.Known())

		if key, _, ok := strings.Cut(tok, ":"); ok && marker.IsKnown(key) {
			msg = fmt.Sprintf("marker %q takes no value and is ignored", tok)
			suggestions = []string{key}
		}

		diags.Add(diagnostic.Diagnostic{
			Severity:    diagnostic.DiagnosticWarning,
			Code:        diagnostic.CodeUnknownMarker,
			Message:     msg,
			TypeName:    typeName,
			FieldPath:   f.Path,
			Position:    position,
			Suggestions: suggestions,
		})
	}

	rf.Case, rf.Conflict = SelectCase(rf.Intent, desc.Shape, r.config.SkipPolicy)
	rf.Synthesized = Synthesize(rf.Case, rf.Intent, tag)

	if rf.Conflict != nil {
		msg := rf.Conflict.Detail()
		if rf.Conflict.Kind == KindMalformedTypeShape {
			msg += fmt.Sprintf(" (declared %s)", desc.TypeString)
		}

		diags.Add(diagnostic.Diagnostic{
			Severity:  diagnostic.DiagnosticError,
			Code:      string(rf.Conflict.Kind),
			Message:   msg,
			TypeName:  typeName,
			FieldPath: f.Path,
			Position:  position,
		})
	}

	log.Debug().
		Str("type", typeName).
		Str("field", f.Path).
		Stringer("case", rf.Case).
		Str("tag", rf.Synthesized.String()).
		Msg("resolved field")

	return rf
}

func positionOf(f *analyze.FieldInfo) string {
	if !f.Pos.IsValid() {
		return ""
	}

	return f.Pos.String()
}
