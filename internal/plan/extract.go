package plan

import (
	"option-tagger/internal/analyze"
	"option-tagger/internal/directive"
	"option-tagger/internal/marker"
)

// Extract reads the markers and directives of a field into a FieldIntent.
// It is pure and never fails; unknown marker tokens are collected for the
// caller to report.
func Extract(d FieldDescriptor) FieldIntent {
	intent := FieldIntent{
		Field:    d.Path,
		OmitZero: d.Layer == analyze.LayerStruct,
	}

	for _, tok := range d.Markers {
		switch tok {
		case marker.Nullable:
			intent.Nullable = true
		case marker.NotRequired:
			intent.NotRequired = true
		default:
			intent.UnknownMarkers = append(intent.UnknownMarkers, tok)
		}
	}

	if d.Tag.IsSkip() {
		intent.HasSkip = true
		return intent
	}

	for i, dir := range d.Tag.Directives {
		switch dir.Key {
		case directive.KeyDefault:
			if !isOwnedDefault(d.Tag.Directives, i) {
				intent.HasExplicitDefault = true
			}
		case directive.KeyWith:
			if !dir.IsOwnedHandler() && !intent.HasCustomWithHandler {
				intent.HasCustomWithHandler = true
				intent.CustomHandler = dir
			}
		}
	}

	return intent
}

// isOwnedDefault reports whether dirs[i] is a default emitted by a previous
// run: a bare default directly followed by the unwrap_or_skip or
// double_option handler.
func isOwnedDefault(dirs []directive.Directive, i int) bool {
	d := dirs[i]
	if d.Key != directive.KeyDefault || d.HasValue || i+1 >= len(dirs) {
		return false
	}

	next := dirs[i+1]

	return next.Key == directive.KeyWith && next.HasValue &&
		(next.Value == directive.HandlerUnwrapOrSkip || next.Value == directive.HandlerDoubleOption)
}
