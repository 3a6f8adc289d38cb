package schema

import (
	"encoding/json"
	"go/types"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog/log"

	"option-tagger/internal/analyze"
	"option-tagger/internal/plan"
)

// OpenAPIVersion is written into rendered documents.
const OpenAPIVersion = "3.0.3"

const componentsPrefix = "#/components/schemas/"

// Builder collects component schemas for resolved structs.
type Builder struct {
	names      map[analyze.TypeID]string
	components map[analyze.TypeID]*openapi3.Schema
	added      map[analyze.TypeID]bool
}

// NewBuilder creates a Builder. Component names are the struct names, or
// "pkg.Name" when two loaded packages declare the same name.
func NewBuilder(graph *analyze.TypeGraph) *Builder {
	b := &Builder{
		names:      map[analyze.TypeID]string{},
		components: map[analyze.TypeID]*openapi3.Schema{},
		added:      map[analyze.TypeID]bool{},
	}

	if graph == nil {
		return b
	}

	count := map[string]int{}
	for _, s := range graph.OrderedStructs() {
		count[s.ID.Name]++
	}

	for _, s := range graph.OrderedStructs() {
		if count[s.ID.Name] > 1 {
			b.names[s.ID] = s.ID.Short()
		} else {
			b.names[s.ID] = s.ID.Name
		}
	}

	return b
}

var _ plan.SchemaSink = (*Builder)(nil)

// AddStruct implements plan.SchemaSink.
func (b *Builder) AddStruct(rs *plan.ResolvedStruct) error {
	id := rs.Struct.ID

	exported := false
	for i := range rs.Fields {
		if rs.Fields[i].Field != nil && rs.Fields[i].Field.Exported {
			exported = true
			break
		}
	}

	if !exported {
		log.Debug().Str("type", id.Short()).Msg("no exported fields, schema skipped")
		return nil
	}

	root := b.component(id)
	objects := map[string]*openapi3.Schema{id.Name: root}

	for i := range rs.Fields {
		rf := &rs.Fields[i]

		flags := FieldFlags(rf)
		if flags.Excluded || rf.Field == nil || rf.Field.Embedded {
			continue
		}

		parent := objects[parentPath(rf.Path)]
		if parent == nil {
			// Parent was excluded.
			continue
		}

		prop := b.typeSchema(rf.Field.Type)
		if nested := prop.Value; nested != nil && prop.Ref == "" && isObject(nested) && len(nested.Properties) == 0 {
			objects[rf.Path] = nested
		}

		name := propertyName(rf)
		parent.WithPropertyRef(name, nullable(prop, flags.Nullable))

		if flags.Required {
			parent.Required = append(parent.Required, name)
		}
	}

	b.added[id] = true

	return nil
}

// Schemas returns the components of every added struct.
func (b *Builder) Schemas() openapi3.Schemas {
	out := openapi3.Schemas{}

	for id, s := range b.components {
		if b.added[id] {
			out[b.nameOf(id)] = openapi3.NewSchemaRef("", s)
		}
	}

	return out
}

// Schema returns the component schema of a struct, or nil.
func (b *Builder) Schema(id analyze.TypeID) *openapi3.Schema {
	if !b.added[id] {
		return nil
	}

	return b.components[id]
}

// MarshalJSON renders a minimal OpenAPI document holding the components.
func (b *Builder) MarshalJSON() ([]byte, error) {
	doc := map[string]any{
		"openapi": OpenAPIVersion,
		"info":    map[string]string{"title": "option-tagger components", "version": "1"},
		"paths":   map[string]any{},
		"components": map[string]any{
			"schemas": b.Schemas(),
		},
	}

	return json.MarshalIndent(doc, "", "  ")
}

// Names returns the component names in lexical order.
func (b *Builder) Names() []string {
	var names []string
	for id := range b.components {
		if b.added[id] {
			names = append(names, b.nameOf(id))
		}
	}

	sort.Strings(names)

	return names
}

func (b *Builder) nameOf(id analyze.TypeID) string {
	if n, ok := b.names[id]; ok {
		return n
	}

	return id.Name
}

// component returns the shared schema of a struct, creating it on first use
// so references resolve in any order.
func (b *Builder) component(id analyze.TypeID) *openapi3.Schema {
	if s, ok := b.components[id]; ok {
		return s
	}

	s := openapi3.NewObjectSchema()
	b.components[id] = s

	return s
}

// typeSchema maps the value type of a field, with optional layers removed.
func (b *Builder) typeSchema(info *analyze.TypeInfo) *openapi3.SchemaRef {
	if info == nil || info.GoType == nil {
		return openapi3.NewSchemaRef("", &openapi3.Schema{})
	}

	return b.goTypeSchema(analyze.StripOptional(info.GoType))
}

func (b *Builder) goTypeSchema(t types.Type) *openapi3.SchemaRef {
	t = types.Unalias(t)

	if named, ok := t.(*types.Named); ok {
		obj := named.Obj()
		if obj.Pkg() != nil && obj.Pkg().Path() == "time" && obj.Name() == "Time" {
			return openapi3.NewSchemaRef("", openapi3.NewDateTimeSchema())
		}

		if _, isStruct := named.Underlying().(*types.Struct); isStruct && obj.Pkg() != nil {
			id := analyze.TypeID{PkgPath: obj.Pkg().Path(), Name: obj.Name()}
			if _, known := b.names[id]; known {
				return openapi3.NewSchemaRef(componentsPrefix+b.nameOf(id), b.component(id))
			}
		}
	}

	switch u := t.Underlying().(type) {
	case *types.Basic:
		return openapi3.NewSchemaRef("", basicSchema(u))

	case *types.Slice:
		if isByte(u.Elem()) {
			return openapi3.NewSchemaRef("", openapi3.NewStringSchema().WithFormat("byte"))
		}

		return openapi3.NewSchemaRef("", openapi3.NewArraySchema().WithItems(b.elemSchema(u.Elem())))

	case *types.Array:
		return openapi3.NewSchemaRef("", openapi3.NewArraySchema().WithItems(b.elemSchema(u.Elem())))

	case *types.Map:
		obj := openapi3.NewObjectSchema()
		obj.AdditionalProperties = openapi3.AdditionalProperties{Schema: b.goTypeSchema(analyze.StripOptional(u.Elem()))}

		return openapi3.NewSchemaRef("", obj)

	case *types.Struct:
		// Anonymous struct; its fields follow in the flattened field list.
		return openapi3.NewSchemaRef("", openapi3.NewObjectSchema())

	default:
		return openapi3.NewSchemaRef("", &openapi3.Schema{})
	}
}

// elemSchema returns an inline schema for a slice or array element.
func (b *Builder) elemSchema(t types.Type) *openapi3.Schema {
	ref := b.goTypeSchema(analyze.StripOptional(t))
	if ref.Ref == "" {
		return ref.Value
	}

	return &openapi3.Schema{AllOf: openapi3.SchemaRefs{ref}}
}

func basicSchema(t *types.Basic) *openapi3.Schema {
	info := t.Info()

	switch {
	case info&types.IsBoolean != 0:
		return openapi3.NewBoolSchema()
	case info&types.IsString != 0:
		return openapi3.NewStringSchema()
	case t.Kind() == types.Int64 || t.Kind() == types.Uint64:
		return openapi3.NewInt64Schema()
	case t.Kind() == types.Int32 || t.Kind() == types.Uint32:
		return openapi3.NewInt32Schema()
	case info&types.IsInteger != 0:
		return openapi3.NewIntegerSchema()
	case info&types.IsFloat != 0:
		return openapi3.NewFloat64Schema()
	default:
		return &openapi3.Schema{}
	}
}

// nullable marks a property schema as accepting null. References are wrapped
// so that the shared component is not modified.
func nullable(ref *openapi3.SchemaRef, on bool) *openapi3.SchemaRef {
	if !on {
		return ref
	}

	if ref.Ref != "" {
		return openapi3.NewSchemaRef("", &openapi3.Schema{
			Nullable: true,
			AllOf:    openapi3.SchemaRefs{ref},
		})
	}

	ref.Value.Nullable = true

	return ref
}

func isObject(s *openapi3.Schema) bool {
	return s.Type != nil && s.Type.Is(openapi3.TypeObject)
}

func isByte(t types.Type) bool {
	b, ok := types.Unalias(t).(*types.Basic)
	return ok && b.Kind() == types.Byte
}

// parentPath drops the last element of a field path.
func parentPath(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[:i]
	}

	return path
}
