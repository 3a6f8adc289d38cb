package plan

import (
	"fmt"

	"option-tagger/internal/analyze"
	"option-tagger/internal/directive"
)

// SelectCase maps an intent and the declared type shape to exactly one
// SemanticCase. Rules are checked in order and the first match wins. A
// ConflictError is returned only with CaseConflict.
func SelectCase(intent FieldIntent, shape analyze.OptionShape, policy SkipPolicy) (SemanticCase, *ConflictError) {
	markers := intent.HasMarkers()

	switch {
	case intent.HasSkip && !markers:
		return CaseSkipped, nil

	case intent.HasSkip:
		if policy == SkipIgnore {
			return CaseSkipped, nil
		}

		return conflict(intent, KindConflict, fmt.Sprintf("%q", directive.SkipValue))

	case !markers:
		return CasePlainOptional, nil

	case intent.HasCustomWithHandler:
		return conflict(intent, KindConflict, fmt.Sprintf("%q", intent.CustomHandler.String()))

	case !shape.IsOptional():
		return conflict(intent, KindMalformedTypeShape, shapeDescription(shape))
	}

	switch {
	case intent.Nullable && !intent.NotRequired && shape == analyze.ShapeSingle:
		return CaseNullable, nil
	case intent.NotRequired && !intent.Nullable && shape == analyze.ShapeSingle:
		return CaseNotRequired, nil
	case intent.Nullable && intent.NotRequired && shape == analyze.ShapeDouble:
		return CaseNullableAndNotRequired, nil
	default:
		// Both markers on a single layer, or one marker on two layers.
		return conflict(intent, KindMalformedTypeShape, shapeDescription(shape))
	}
}

func conflict(intent FieldIntent, kind ConflictKind, right string) (SemanticCase, *ConflictError) {
	return CaseConflict, &ConflictError{
		Kind:  kind,
		Field: intent.Field,
		Left:  fmt.Sprintf("%q", intent.MarkerList()),
		Right: right,
	}
}

func shapeDescription(shape analyze.OptionShape) string {
	switch shape {
	case analyze.ShapeNone:
		return "a non-optional type"
	case analyze.ShapeSingle:
		return "a single optional layer (nullable,not_required needs two)"
	case analyze.ShapeDouble:
		return "a double optional layer (needs both nullable and not_required)"
	default:
		return "a type with more than two optional layers"
	}
}
