package plan

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"option-tagger/internal/diagnostic"
)

// ExportedPlan is the serializable form of a ResolvedPlan.
type ExportedPlan struct {
	Structs  []ExportedStruct        `json:"structs" yaml:"structs"`
	Errors   []diagnostic.Diagnostic `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings []diagnostic.Diagnostic `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ExportedStruct lists the fields of one struct.
type ExportedStruct struct {
	Type   string          `json:"type" yaml:"type"`
	File   string          `json:"file,omitempty" yaml:"file,omitempty"`
	Fields []ExportedField `json:"fields" yaml:"fields"`
}

// ExportedField is the outcome for one field.
type ExportedField struct {
	Path     string         `json:"path" yaml:"path"`
	Shape    string         `json:"shape" yaml:"shape"`
	Markers  []string       `json:"markers,omitempty" yaml:"markers,omitempty"`
	Case     SemanticCase   `json:"case" yaml:"case"`
	Original string         `json:"original" yaml:"original"`
	Tag      string         `json:"tag" yaml:"tag"`
	Changed  bool           `json:"changed" yaml:"changed"`
	Conflict *ConflictError `json:"conflict,omitempty" yaml:"conflict,omitempty"`
}

// Export converts a plan into its serializable form.
func Export(p *ResolvedPlan) *ExportedPlan {
	out := &ExportedPlan{
		Structs:  make([]ExportedStruct, 0, len(p.Structs)),
		Errors:   p.Diagnostics.Errors,
		Warnings: p.Diagnostics.Warnings,
	}

	for i := range p.Structs {
		rs := &p.Structs[i]
		es := ExportedStruct{
			Type:   rs.Struct.ID.String(),
			File:   rs.Struct.File,
			Fields: make([]ExportedField, 0, len(rs.Fields)),
		}

		for j := range rs.Fields {
			rf := &rs.Fields[j]
			es.Fields = append(es.Fields, ExportedField{
				Path:     rf.Path,
				Shape:    rf.Field.Shape.String(),
				Markers:  rf.Markers,
				Case:     rf.Case,
				Original: rf.Original.Raw,
				Tag:      rf.Synthesized.String(),
				Changed:  rf.Changed(),
				Conflict: rf.Conflict,
			})
		}

		out.Structs = append(out.Structs, es)
	}

	return out
}

// ExportYAML serializes the plan as YAML.
func ExportYAML(p *ResolvedPlan) ([]byte, error) {
	return yaml.Marshal(Export(p))
}

// ExportJSON serializes the plan as indented JSON.
func ExportJSON(p *ResolvedPlan) ([]byte, error) {
	return json.MarshalIndent(Export(p), "", "  ")
}
