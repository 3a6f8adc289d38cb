// Package marker parses the marker annotations that request optional-value
// semantics on a struct field.
package marker

import (
	"sort"

	"github.com/vmihailenco/tagparser/v2"
)

// Marker tokens. They are matched exactly and case-sensitively.
const (
	Nullable    = "nullable"
	NotRequired = "not_required"
)

// DefaultTagKey is the struct tag key holding markers.
const DefaultTagKey = "opt"

// Known returns the recognized marker tokens.
func Known() []string {
	return []string{Nullable, NotRequired}
}

// IsKnown reports whether token is a recognized marker.
func IsKnown(token string) bool {
	return token == Nullable || token == NotRequired
}

// Parse splits a marker tag value such as "nullable,not_required" into its
// tokens. The first token keeps its position; the rest are sorted, because
// the tag parser does not keep their order. Duplicates collapse.
//
// Markers take no value. A valued entry such as "nullable:false" is kept
// whole as "nullable:false", which is not a known marker.
func Parse(value string) []string {
	if value == "" {
		return nil
	}

	parsed := tagparser.Parse(value)

	var tokens []string
	if parsed.Name != "" {
		tokens = append(tokens, parsed.Name)
	}

	rest := make([]string, 0, len(parsed.Options))
	for opt, v := range parsed.Options {
		switch {
		case v != "":
			rest = append(rest, opt+":"+v)
		case opt != "" && opt != parsed.Name:
			rest = append(rest, opt)
		}
	}

	sort.Strings(rest)

	return append(tokens, rest...)
}

// Union merges marker token lists, keeping first-seen order.
func Union(lists ...[]string) []string {
	seen := make(map[string]struct{})

	var out []string
	for _, l := range lists {
		for _, tok := range l {
			if _, ok := seen[tok]; ok {
				continue
			}

			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}

	return out
}
