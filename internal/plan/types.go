package plan

import (
	"fmt"
	"strings"

	"option-tagger/internal/analyze"
	"option-tagger/internal/diagnostic"
	"option-tagger/internal/directive"
)

//go:generate go tool stringer -type=SemanticCase -linecomment

// SemanticCase is the optional-value behavior selected for one field.
type SemanticCase int

const (
	// CasePlainOptional - no markers; directives are left alone.
	CasePlainOptional SemanticCase = iota // plain_optional
	// CaseNullable - always present, absent encodes as null.
	CaseNullable // nullable
	// CaseNotRequired - omitted when absent, never null.
	CaseNotRequired // not_required
	// CaseNullableAndNotRequired - three states: missing, null, value.
	CaseNullableAndNotRequired // nullable_and_not_required
	// CaseSkipped - excluded from serialization.
	CaseSkipped // skipped
	// CaseConflict - incompatible annotations; nothing is synthesized.
	CaseConflict // conflict
)

// MarshalText renders the case by name in exported plans.
func (c SemanticCase) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Rewrites reports whether the case synthesizes a new directive set.
func (c SemanticCase) Rewrites() bool {
	switch c {
	case CaseNullable, CaseNotRequired, CaseNullableAndNotRequired:
		return true
	default:
		return false
	}
}

// ConflictKind classifies a ConflictError.
type ConflictKind string

const (
	// KindConflict - two annotations contradict each other.
	KindConflict ConflictKind = diagnostic.CodeConflict
	// KindMalformedTypeShape - the markers do not fit the declared type.
	KindMalformedTypeShape ConflictKind = diagnostic.CodeMalformedTypeShape
)

// ConflictError describes why a field resolved to CaseConflict.
type ConflictError struct {
	Kind  ConflictKind `json:"kind" yaml:"kind"`
	Field string       `json:"field" yaml:"field"`
	// Left and Right are the conflicting pair, e.g. the marker and the
	// directive (or type shape) it contradicts.
	Left  string `json:"left" yaml:"left"`
	Right string `json:"right" yaml:"right"`
}

// Error implements error.
func (e *ConflictError) Error() string {
	return e.Field + ": " + e.Detail()
}

// Detail describes the conflict without naming the field.
func (e *ConflictError) Detail() string {
	if e.Kind == KindMalformedTypeShape {
		return fmt.Sprintf("marker %s does not fit %s", e.Left, e.Right)
	}

	return fmt.Sprintf("marker %s conflicts with %s", e.Left, e.Right)
}

// SkipPolicy decides how a skipped field with markers is treated.
type SkipPolicy string

const (
	// SkipReject reports skip plus markers as a conflict.
	SkipReject SkipPolicy = "reject"
	// SkipIgnore lets the skip win and ignores the markers.
	SkipIgnore SkipPolicy = "ignore"
)

// Valid reports whether p is a known policy.
func (p SkipPolicy) Valid() bool {
	return p == SkipReject || p == SkipIgnore
}

// FieldDescriptor is the input of a single field resolution.
type FieldDescriptor struct {
	// Path is the owner-qualified field path, e.g. "Customer.Address".
	Path string
	// Name is the Go field name.
	Name string
	// Shape is the number of optional layers of the declared type.
	Shape analyze.OptionShape
	// Layer is the kind of the outermost optional layer.
	Layer analyze.OptionLayer
	// TypeString is the declared type, for diagnostics.
	TypeString string
	// Markers are the raw marker tokens, tag markers first.
	Markers []string
	// Tag is the parsed directive tag.
	Tag directive.Tag
}

// FieldIntent is what the markers and existing directives of a field ask for.
type FieldIntent struct {
	Field                string
	Nullable             bool
	NotRequired          bool
	HasExplicitDefault   bool
	HasSkip              bool
	HasCustomWithHandler bool
	// OmitZero is set when the outer optional layer is a struct, which
	// omitempty never leaves out.
	OmitZero bool
	// CustomHandler is the first with: directive outside the owned set.
	CustomHandler directive.Directive
	// UnknownMarkers are marker tokens that were not recognized.
	UnknownMarkers []string
}

// HasMarkers reports whether any recognized marker is present.
func (fi FieldIntent) HasMarkers() bool {
	return fi.Nullable || fi.NotRequired
}

// MarkerList renders the recognized markers, e.g. "nullable,not_required".
func (fi FieldIntent) MarkerList() string {
	var parts []string
	if fi.Nullable {
		parts = append(parts, "nullable")
	}

	if fi.NotRequired {
		parts = append(parts, "not_required")
	}

	return strings.Join(parts, ",")
}

// ResolvedField is the outcome for one field.
type ResolvedField struct {
	// Field is the analyzed field this result belongs to.
	Field *analyze.FieldInfo
	// Path is the owner-qualified field path.
	Path string
	// Case is the selected semantic case.
	Case SemanticCase
	// Intent is the extracted intent.
	Intent FieldIntent
	// Markers are the merged marker tokens (tag and overlay).
	Markers []string
	// Original is the directive tag as declared.
	Original directive.Tag
	// Synthesized is the directive tag to write. Equal to Original unless
	// the case rewrites.
	Synthesized directive.Tag
	// Conflict is set when Case is CaseConflict.
	Conflict *ConflictError
}

// Changed reports whether the synthesized directives differ from the
// declared ones.
func (f *ResolvedField) Changed() bool {
	return f.Case.Rewrites() && !f.Original.Equal(f.Synthesized)
}

// ResolvedStruct holds the field results of one struct, in declaration order.
type ResolvedStruct struct {
	Struct *analyze.StructInfo
	Fields []ResolvedField
}

// Field returns the result for the given field path, or nil.
func (s *ResolvedStruct) Field(path string) *ResolvedField {
	for i := range s.Fields {
		if s.Fields[i].Path == path {
			return &s.Fields[i]
		}
	}

	return nil
}

// ResolvedPlan is the final output of the resolution pipeline.
type ResolvedPlan struct {
	// Structs are the resolved structs in declaration order.
	Structs []ResolvedStruct
	// TypeGraph holds the analyzed packages the plan refers to.
	TypeGraph *analyze.TypeGraph
	// Diagnostics contains all warnings and errors, in declaration order.
	Diagnostics diagnostic.Diagnostics
}

// Struct returns the resolved struct with the given ID, or nil.
func (p *ResolvedPlan) Struct(id analyze.TypeID) *ResolvedStruct {
	for i := range p.Structs {
		if p.Structs[i].Struct.ID == id {
			return &p.Structs[i]
		}
	}

	return nil
}

// Changed returns the fields whose directives are rewritten, in order.
func (p *ResolvedPlan) Changed() []*ResolvedField {
	var out []*ResolvedField

	for i := range p.Structs {
		for j := range p.Structs[i].Fields {
			if p.Structs[i].Fields[j].Changed() {
				out = append(out, &p.Structs[i].Fields[j])
			}
		}
	}

	return out
}
