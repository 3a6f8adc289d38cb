package overlay

import "sort"

// CurrentVersion is the only overlay schema version understood.
const CurrentVersion = "1"

// File is the root of an overlay document.
type File struct {
	Version string        `yaml:"version"`
	Types   []TypeMarkers `yaml:"types"`
}

// TypeMarkers declares markers for the fields of one struct.
type TypeMarkers struct {
	// Type is "pkgname.Type", "import/path.Type" or just "Type".
	Type string `yaml:"type"`
	// Fields maps a field path relative to the struct ("Address",
	// "Settings.Theme") to its marker tokens.
	Fields map[string][]string `yaml:"fields"`
}

// SortedFields returns the field keys in lexical order.
func (tm *TypeMarkers) SortedFields() []string {
	keys := make([]string, 0, len(tm.Fields))
	for k := range tm.Fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
