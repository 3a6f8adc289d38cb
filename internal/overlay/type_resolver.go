package overlay

import (
	"strings"

	"option-tagger/internal/analyze"
	"option-tagger/internal/common"
)

// ResolveStruct resolves a type string like:
// - "store.Customer" (package name)
// - "option-tagger/store.Customer" (full import path)
// - "Customer" (name only, first match in declaration order).
func ResolveStruct(typeStr string, graph *analyze.TypeGraph) *analyze.StructInfo {
	if graph == nil || typeStr == "" {
		return nil
	}

	lastDot := strings.LastIndex(typeStr, ".")
	if lastDot < 0 {
		for _, s := range graph.OrderedStructs() {
			if s.ID.Name == typeStr {
				return s
			}
		}

		return nil
	}

	pkgStr := typeStr[:lastDot]

	name := typeStr[lastDot+1:]
	if pkgStr == "" || name == "" {
		return nil
	}

	// 1) exact match (for fully qualified import path)
	if s := graph.GetStruct(analyze.TypeID{PkgPath: pkgStr, Name: name}); s != nil {
		return s
	}

	// 2) package name or path suffix ("store.Customer" vs "option-tagger/store.Customer")
	for _, s := range graph.OrderedStructs() {
		if s.ID.Name != name {
			continue
		}

		if common.PkgAlias(s.ID.PkgPath) == pkgStr || strings.HasSuffix(s.ID.PkgPath, "/"+pkgStr) {
			return s
		}
	}

	return nil
}

// structNames lists every struct in "pkgname.Type" form, for suggestions.
func structNames(graph *analyze.TypeGraph) []string {
	var names []string
	for _, s := range graph.OrderedStructs() {
		names = append(names, s.ID.Short())
	}

	return names
}
