package overlay

import (
	"fmt"
	"strings"

	"option-tagger/internal/analyze"
	"option-tagger/internal/diagnostic"
	"option-tagger/internal/marker"
	"option-tagger/internal/match"
)

// Index maps a field path ("Customer.Address") of a struct to overlay markers.
type Index map[analyze.TypeID]map[string][]string

// Markers returns the overlay markers for a field, or nil.
func (ix Index) Markers(owner analyze.TypeID, fieldPath string) []string {
	if ix == nil {
		return nil
	}

	return ix[owner][fieldPath]
}

// Build validates f against graph and indexes its markers by struct and
// field path. Entries that fail validation are left out of the index.
func Build(f *File, graph *analyze.TypeGraph) (Index, *diagnostic.Diagnostics) {
	diags := &diagnostic.Diagnostics{}
	ix := Index{}

	if f == nil {
		return ix, diags
	}

	if f.Version != CurrentVersion {
		diags.AddError(diagnostic.CodeOverlayVersion,
			fmt.Sprintf("unsupported overlay version %q (want %q)", f.Version, CurrentVersion), "", "")

		return ix, diags
	}

	for i := range f.Types {
		tm := &f.Types[i]

		s := ResolveStruct(tm.Type, graph)
		if s == nil {
			diags.Add(diagnostic.Diagnostic{
				Severity:    diagnostic.DiagnosticError,
				Code:        diagnostic.CodeOverlayType,
				Message:     fmt.Sprintf("overlay type %q not found", tm.Type),
				TypeName:    tm.Type,
				Suggestions: match.Suggest(tm.Type, structNames(graph)),
			})

			continue
		}

		paths := make(map[string]struct{}, len(s.Fields))
		relative := make([]string, 0, len(s.Fields))

		for _, fi := range s.Fields {
			paths[fi.Path] = struct{}{}
			relative = append(relative, strings.TrimPrefix(fi.Path, s.ID.Name+"."))
		}

		for _, key := range tm.SortedFields() {
			fieldPath := s.ID.Name + "." + key

			if _, ok := paths[fieldPath]; !ok {
				diags.Add(diagnostic.Diagnostic{
					Severity:    diagnostic.DiagnosticError,
					Code:        diagnostic.CodeOverlayField,
					Message:     fmt.Sprintf("overlay field %q not found in %s", key, s.ID.Short()),
					TypeName:    s.ID.Short(),
					FieldPath:   fieldPath,
					Suggestions: match.Suggest(key, relative),
				})

				continue
			}

			tokens := tm.Fields[key]
			for _, tok := range tokens {
				if !marker.IsKnown(tok) {
					diags.Add(diagnostic.Diagnostic{
						Severity:    diagnostic.DiagnosticWarning,
						Code:        diagnostic.CodeUnknownMarker,
						Message:     fmt.Sprintf("overlay marker %q is not recognized and is ignored", tok),
						TypeName:    s.ID.Short(),
						FieldPath:   fieldPath,
						Suggestions: match.Suggest(tok, marker.Known()),
					})
				}
			}

			if ix[s.ID] == nil {
				ix[s.ID] = map[string][]string{}
			}

			ix[s.ID][fieldPath] = marker.Union(ix[s.ID][fieldPath], knownOnly(tokens))
		}
	}

	return ix, diags
}

func knownOnly(tokens []string) []string {
	var out []string
	for _, tok := range tokens {
		if marker.IsKnown(tok) {
			out = append(out, tok)
		}
	}

	return out
}
