package schema

import (
	"option-tagger/internal/directive"
	"option-tagger/internal/plan"
)

// Flags are the schema attributes of one property.
type Flags struct {
	Nullable bool
	Required bool
	// Excluded fields do not appear in the schema at all.
	Excluded bool
}

// FlagsFor maps a semantic case to its fixed flags. ok is false for
// CasePlainOptional and CaseConflict, whose flags depend on the field.
func FlagsFor(c plan.SemanticCase) (flags Flags, ok bool) {
	switch c {
	case plan.CaseNullable:
		return Flags{Nullable: true, Required: true}, true
	case plan.CaseNotRequired:
		return Flags{Nullable: false, Required: false}, true
	case plan.CaseNullableAndNotRequired:
		return Flags{Nullable: true, Required: false}, true
	case plan.CaseSkipped:
		return Flags{Excluded: true}, true
	default:
		return Flags{}, false
	}
}

// FieldFlags returns the flags of a resolved field. Plain fields follow
// their Go type: an optional type is nullable, and the field is required
// unless an omission directive is present.
func FieldFlags(rf *plan.ResolvedField) Flags {
	if flags, ok := FlagsFor(rf.Case); ok {
		return flags
	}

	if rf.Field != nil && !rf.Field.Exported {
		return Flags{Excluded: true}
	}

	omitted := false
	for _, d := range rf.Synthesized.Directives {
		if d.IsPresenceOmission() {
			omitted = true
		}
	}

	return Flags{
		Nullable: rf.Field != nil && rf.Field.Shape.IsOptional(),
		Required: !omitted,
	}
}

// propertyName is the serialized name of a field.
func propertyName(rf *plan.ResolvedField) string {
	if rf.Synthesized.Name != "" && rf.Synthesized.Name != directive.SkipValue {
		return rf.Synthesized.Name
	}

	if rf.Field != nil {
		return rf.Field.Name
	}

	return rf.Path
}
