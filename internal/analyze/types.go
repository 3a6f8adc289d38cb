package analyze

import (
	"go/ast"
	"go/token"
	"go/types"
	"reflect"

	"option-tagger/internal/common"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "option-tagger/store"
	Name    string // e.g., "Customer"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// Short returns "pkgname.Name", the form used in diagnostics.
func (t TypeID) Short() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return common.PkgAlias(t.PkgPath) + "." + t.Name
}

// TypeKind represents the kind of a type.
type TypeKind int

const (
	TypeKindUnknown  TypeKind = iota
	TypeKindBasic             // int, string, bool, etc.
	TypeKindStruct            // struct type
	TypeKindPointer           // pointer to another type
	TypeKindSlice             // slice of another type
	TypeKindArray             // array of another type
	TypeKindMap               // map type
	TypeKindAlias             // named type wrapping another
	TypeKindExternal          // external/opaque type (e.g., time.Time)
	TypeKindOption            // generic Option[T]
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindBasic:
		return "basic"
	case TypeKindStruct:
		return "struct"
	case TypeKindPointer:
		return "pointer"
	case TypeKindSlice:
		return "slice"
	case TypeKindArray:
		return "array"
	case TypeKindMap:
		return "map"
	case TypeKindAlias:
		return "alias"
	case TypeKindExternal:
		return "external"
	case TypeKindOption:
		return "option"
	default:
		return common.UnknownStr
	}
}

// TypeInfo describes a Go type referenced by a struct field.
type TypeInfo struct {
	ID       TypeID     // Set for named types
	Kind     TypeKind   // Kind of type
	ElemType *TypeInfo  // For pointers, slices, arrays, maps (value) and options
	GoType   types.Type // The original go/types.Type
}

// IsNamed returns true if this type has a name (TypeID is set).
func (t *TypeInfo) IsNamed() bool {
	return t.ID.Name != ""
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string            // Go field name
	Path     string            // Owner-qualified path, e.g. "Customer.Meta.Note"
	Exported bool              // Whether the field is exported
	Embedded bool              // Whether the field is embedded (anonymous)
	Type     *TypeInfo         // Field type
	Shape    OptionShape       // Optional layers of the declared type
	Layer    OptionLayer       // Kind of the outermost optional layer
	Tag      reflect.StructTag // Raw struct tag
	Index    int               // Field index in the struct
	Node     *ast.Field        // Declaration node; shared by all names of the field
	Pos      token.Position    // Position of the field name
}

// JSONName returns the JSON tag name if present, otherwise the field name.
func (f *FieldInfo) JSONName() string {
	return f.TagName("json")
}

// TagName returns the name element of the given tag key, or the Go field
// name when the tag is missing or has an empty name.
func (f *FieldInfo) TagName(key string) string {
	if tag := f.Tag.Get(key); tag != "" && tag != "-" {
		for i := range len(tag) {
			if tag[i] == ',' {
				if i == 0 {
					return f.Name
				}

				return tag[:i]
			}
		}

		return tag
	}

	return f.Name
}

// HasTag returns true if the field has the specified tag.
func (f *FieldInfo) HasTag(key string) bool {
	_, ok := f.Tag.Lookup(key)
	return ok
}

// StructInfo is a struct type declaration.
type StructInfo struct {
	ID     TypeID         // Declared type
	Fields []FieldInfo    // Fields in declaration order, nested anonymous structs flattened
	File   string         // Absolute file name
	Pos    token.Position // Position of the type name
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path    string         // Import path
	Name    string         // Package name
	Fset    *token.FileSet // File set shared by Files
	Files   []*ast.File    // Parsed syntax, in the order go/packages reports it
	Names   []string       // File names parallel to Files
	Structs []*StructInfo  // Struct declarations in file order
}

// FileFor returns the syntax tree for the given file name.
func (p *PackageInfo) FileFor(name string) *ast.File {
	for i, n := range p.Names {
		if n == name {
			return p.Files[i]
		}
	}

	return nil
}

// TypeGraph holds all analyzed structs from loaded packages.
type TypeGraph struct {
	// Structs maps TypeID to StructInfo for all declared struct types.
	Structs map[TypeID]*StructInfo
	// Packages holds the loaded packages sorted by import path.
	Packages []*PackageInfo
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Structs: make(map[TypeID]*StructInfo),
	}
}

// GetStruct returns the StructInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetStruct(id TypeID) *StructInfo {
	return g.Structs[id]
}

// OrderedStructs returns every struct in declaration order: packages by
// import path, then files, then position within the file.
func (g *TypeGraph) OrderedStructs() []*StructInfo {
	var out []*StructInfo
	for _, p := range g.Packages {
		out = append(out, p.Structs...)
	}

	return out
}

// Package returns the package with the given import path.
func (g *TypeGraph) Package(path string) *PackageInfo {
	for _, p := range g.Packages {
		if p.Path == path {
			return p
		}
	}

	return nil
}
