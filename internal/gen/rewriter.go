package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"option-tagger/internal/analyze"
	"option-tagger/internal/common"
	"option-tagger/internal/diagnostic"
	"option-tagger/internal/directive"
	"option-tagger/internal/marker"
	"option-tagger/internal/plan"
)

// RewriterConfig holds configuration for tag rewriting.
type RewriterConfig struct {
	// MarkerTag is the struct tag key holding markers.
	MarkerTag string
	// DirectiveTag is the struct tag key receiving synthesized directives.
	DirectiveTag string
	// StripMarkers removes the marker key from rewritten fields.
	StripMarkers bool
}

// DefaultRewriterConfig returns the default rewriter configuration.
func DefaultRewriterConfig() RewriterConfig {
	return RewriterConfig{
		MarkerTag:    marker.DefaultTagKey,
		DirectiveTag: "json",
	}
}

// Rewriter edits struct tags according to a resolved plan.
type Rewriter struct {
	config RewriterConfig
}

// NewRewriter creates a new Rewriter with the given configuration.
func NewRewriter(config RewriterConfig) *Rewriter {
	return &Rewriter{config: config}
}

// RewrittenFile represents a Go source file with edited tags.
type RewrittenFile struct {
	// Path is the absolute path of the source file.
	Path string
	// Filename is the output name relative to an output directory,
	// e.g. "store/types.go".
	Filename string
	// Content is the formatted Go source code.
	Content []byte
	// Changes is the number of edited struct tags.
	Changes int
}

// fileEdit collects the tag edits of one source file.
type fileEdit struct {
	pkg   *analyze.PackageInfo
	file  *ast.File
	path  string
	nodes []*ast.Field
	tags  map[*ast.Field]string
}

// Rewrite computes the new content of every file with at least one changed
// tag, in declaration order. Names declared together ("A, B *int") share a
// tag; if their synthesized tags differ a shared_tag diagnostic is returned
// and nothing is rewritten.
func (r *Rewriter) Rewrite(p *plan.ResolvedPlan) ([]RewrittenFile, *diagnostic.Diagnostics, error) {
	diags := &diagnostic.Diagnostics{}

	if p.Diagnostics.HasErrors() {
		return nil, diags, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("resolution reported %d error(s); nothing is rewritten", len(p.Diagnostics.Errors)))
	}

	var (
		edits []*fileEdit
		byKey = map[string]*fileEdit{}
	)

	for i := range p.Structs {
		rs := &p.Structs[i]
		for _, group := range groupByNode(rs.Fields) {
			value, changed, ok := r.editFor(rs, group, diags)
			if !ok || !changed {
				continue
			}

			edit, err := r.editOf(p.TypeGraph, rs.Struct, byKey, &edits)
			if err != nil {
				return nil, diags, err
			}

			node := group[0].Field.Node
			edit.nodes = append(edit.nodes, node)
			edit.tags[node] = value
		}
	}

	if diags.HasErrors() {
		return nil, diags, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("fields sharing a declaration need different tags; nothing is rewritten")
	}

	files := make([]RewrittenFile, 0, len(edits))

	for _, edit := range edits {
		rf, err := r.apply(edit)
		if err != nil {
			return nil, diags, err
		}

		files = append(files, rf)
	}

	return files, diags, nil
}

// groupByNode groups fields by declaration, keeping first-seen order.
func groupByNode(fields []plan.ResolvedField) [][]*plan.ResolvedField {
	var (
		groups [][]*plan.ResolvedField
		index  = map[*ast.Field]int{}
	)

	for i := range fields {
		rf := &fields[i]
		if rf.Field == nil || rf.Field.Node == nil {
			continue
		}

		if at, ok := index[rf.Field.Node]; ok {
			groups[at] = append(groups[at], rf)
			continue
		}

		index[rf.Field.Node] = len(groups)
		groups = append(groups, []*plan.ResolvedField{rf})
	}

	return groups
}

// editFor computes the new tag literal content for one declaration. ok is
// false when the names of the declaration disagree.
func (r *Rewriter) editFor(
	rs *plan.ResolvedStruct,
	group []*plan.ResolvedField,
	diags *diagnostic.Diagnostics,
) (value string, changed bool, ok bool) {
	first := group[0]
	for _, rf := range group[1:] {
		if rf.Synthesized.String() != first.Synthesized.String() || rf.Changed() != first.Changed() {
			diags.Add(diagnostic.Diagnostic{
				Severity: diagnostic.DiagnosticError,
				Code:     diagnostic.CodeSharedTag,
				Message: fmt.Sprintf("%s and %s share one tag but resolve to %q and %q; declare them separately",
					first.Field.Name, rf.Field.Name, first.Synthesized.String(), rf.Synthesized.String()),
				TypeName:  rs.Struct.ID.Short(),
				FieldPath: rf.Path,
				Position:  rf.Field.Pos.String(),
			})

			return "", false, false
		}
	}

	raw := currentTag(first.Field.Node)

	tags, err := directive.ParseFieldTag(raw)
	if err != nil {
		// Malformed tags are reported during resolution.
		return "", false, false
	}

	if first.Changed() {
		if err := directive.SetValue(tags, r.config.DirectiveTag, first.Synthesized.String()); err != nil {
			return "", false, false
		}

		changed = true
	}

	if r.config.StripMarkers && first.Case != plan.CaseConflict {
		if _, err := tags.Get(r.config.MarkerTag); err == nil {
			tags.Delete(r.config.MarkerTag)
			changed = true
		}
	}

	return tags.String(), changed, true
}

// editOf returns the edit collecting changes for the file declaring s.
func (r *Rewriter) editOf(
	graph *analyze.TypeGraph,
	s *analyze.StructInfo,
	byKey map[string]*fileEdit,
	edits *[]*fileEdit,
) (*fileEdit, error) {
	if edit, ok := byKey[s.File]; ok {
		return edit, nil
	}

	var pkg *analyze.PackageInfo
	if graph != nil {
		pkg = graph.Package(s.ID.PkgPath)
	}

	if pkg == nil || pkg.FileFor(s.File) == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("syntax for %s not loaded (file %s)", s.ID.Short(), s.File))
	}

	edit := &fileEdit{
		pkg:  pkg,
		file: pkg.FileFor(s.File),
		path: s.File,
		tags: map[*ast.Field]string{},
	}

	byKey[s.File] = edit
	*edits = append(*edits, edit)

	return edit, nil
}

// apply writes the collected tags into the syntax tree and formats the file.
func (r *Rewriter) apply(edit *fileEdit) (RewrittenFile, error) {
	for _, node := range edit.nodes {
		setTag(node, edit.tags[node])
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, edit.pkg.Fset, edit.file); err != nil {
		return RewrittenFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("formatting " + edit.path).
			WithCause(err)
	}

	log.Debug().
		Str("file", edit.path).
		Int("changes", len(edit.nodes)).
		Msg("file rewritten")

	return RewrittenFile{
		Path:     edit.path,
		Filename: filepath.Join(common.PkgAlias(edit.pkg.Path), filepath.Base(edit.path)),
		Content:  buf.Bytes(),
		Changes:  len(edit.nodes),
	}, nil
}

// currentTag returns the unquoted tag of a field declaration.
func currentTag(node *ast.Field) string {
	if node.Tag == nil {
		return ""
	}

	raw, err := strconv.Unquote(node.Tag.Value)
	if err != nil {
		return ""
	}

	return raw
}

// setTag replaces the tag literal of node. An empty tag removes it.
func setTag(node *ast.Field, value string) {
	if value == "" {
		node.Tag = nil
		return
	}

	lit := "`" + value + "`"
	if strings.Contains(value, "`") {
		lit = strconv.Quote(value)
	}

	if node.Tag == nil {
		node.Tag = &ast.BasicLit{Kind: token.STRING, ValuePos: node.Type.End()}
	}

	node.Tag.Value = lit
}
