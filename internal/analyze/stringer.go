package analyze

import (
	"go/types"
	"strings"
)

// TypePath builds a readable path string for a field.
// Examples:
//   - "Customer" for a struct
//   - "Customer.Address" for a field
//   - "Customer.Meta.Note" for a field of an anonymous struct field
type TypePath struct {
	parts []string
}

// NewTypePath creates a new TypePath from a root type name.
func NewTypePath(root string) *TypePath {
	return &TypePath{
		parts: []string{root},
	}
}

// Field appends a field name to the path.
func (p *TypePath) Field(name string) *TypePath {
	return &TypePath{
		parts: append(append([]string{}, p.parts...), name),
	}
}

// String returns the full path string.
func (p *TypePath) String() string {
	return strings.Join(p.parts, ".")
}

// TypeString returns a human-readable representation of a TypeInfo, with
// package-name qualifiers ("*time.Time", "optional.Option[string]").
func TypeString(t *TypeInfo) string {
	if t == nil || t.GoType == nil {
		return "<nil>"
	}

	return types.TypeString(t.GoType, func(p *types.Package) string {
		return p.Name()
	})
}
