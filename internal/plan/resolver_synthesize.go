package plan

import (
	"option-tagger/internal/directive"
)

// Synthesize computes the directive set for a field. Plain, skipped and
// conflicting fields keep existing unchanged. For the other cases the owned
// directives are replaced: unrelated directives and explicit defaults keep
// their order and the synthesized ones are appended. Running Synthesize on
// its own output returns the same tag.
func Synthesize(c SemanticCase, intent FieldIntent, existing directive.Tag) directive.Tag {
	if !c.Rewrites() {
		return existing
	}

	out := directive.Tag{
		Name:    existing.Name,
		Present: true,
	}

	for i, d := range existing.Directives {
		if d.IsPresenceOmission() || d.IsOwnedHandler() || isOwnedDefault(existing.Directives, i) {
			continue
		}

		out.Directives = append(out.Directives, d)
	}

	switch c {
	case CaseNullable:
		out.Directives = append(out.Directives, directive.KeyValue(directive.KeyWith, directive.HandlerNullable))

	case CaseNotRequired:
		out.Directives = appendAbsent(out.Directives, intent, directive.HandlerUnwrapOrSkip)

	case CaseNullableAndNotRequired:
		out.Directives = appendAbsent(out.Directives, intent, directive.HandlerDoubleOption)
	}

	return out
}

// appendAbsent appends the directives of a field that may be missing:
// omitzero for a struct layer, omitempty otherwise. The default is left out
// when the author already declared one.
func appendAbsent(dirs []directive.Directive, intent FieldIntent, handler string) []directive.Directive {
	omit := directive.KeyOmitEmpty
	if intent.OmitZero {
		omit = directive.KeyOmitZero
	}

	dirs = append(dirs, directive.Flag(omit))
	if !intent.HasExplicitDefault {
		dirs = append(dirs, directive.Flag(directive.KeyDefault))
	}

	return append(dirs, directive.KeyValue(directive.KeyWith, handler))
}
