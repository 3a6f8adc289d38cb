package match

import (
	"sort"
	"strings"
)

// DefaultMinSimilarity is the lowest score a candidate needs to be suggested.
const DefaultMinSimilarity = 0.6

// DefaultMaxSuggestions bounds the number of suggestions returned.
const DefaultMaxSuggestions = 2

// Normalize lowercases s and drops '_', '-' and spaces so that
// "NotRequired", "not-required" and "not_required" compare equal.
func Normalize(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		switch r {
		case '_', '-', ' ':
			continue
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// Similarity scores two identifiers after normalization.
func Similarity(a, b string) float64 {
	return LevenshteinNormalized(Normalize(a), Normalize(b))
}

// Suggest returns up to DefaultMaxSuggestions candidates that are at least
// DefaultMinSimilarity close to name, best first. Ties keep candidate order.
func Suggest(name string, candidates []string) []string {
	return SuggestN(name, candidates, DefaultMinSimilarity, DefaultMaxSuggestions)
}

// SuggestN is Suggest with explicit bounds.
func SuggestN(name string, candidates []string, minScore float64, limit int) []string {
	type scored struct {
		name  string
		score float64
	}

	var ranked []scored

	for _, c := range candidates {
		if c == name {
			continue
		}

		if s := Similarity(name, c); s >= minScore {
			ranked = append(ranked, scored{name: c, score: s})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.name)
	}

	return out
}
