package analyze

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"reflect"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"
	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Analyzer loads Go packages and extracts their struct declarations.
type Analyzer struct {
	dir       string
	graph     *TypeGraph
	typeCache map[types.Type]*TypeInfo // Cache to handle recursive types
}

// NewAnalyzer creates a new Analyzer that resolves patterns relative to the
// current directory.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerIn("")
}

// NewAnalyzerIn creates a new Analyzer that resolves patterns relative to dir.
func NewAnalyzerIn(dir string) *Analyzer {
	return &Analyzer{
		dir:       dir,
		graph:     NewTypeGraph(),
		typeCache: make(map[types.Type]*TypeInfo),
	}
}

// LoadPackages loads the specified packages and builds the type graph.
// Patterns are standard Go package patterns (e.g., "./store", "option-tagger/store").
func (a *Analyzer) LoadPackages(patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  a.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// Check for package errors
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })

	for _, pkg := range pkgs {
		a.processPackage(pkg)
	}

	return a.graph, nil
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

// processPackage extracts struct declarations from a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package) {
	info := &PackageInfo{
		Path: pkg.PkgPath,
		Name: pkg.Name,
		Fset: pkg.Fset,
	}

	for _, file := range pkg.Syntax {
		fileName := pkg.Fset.Position(file.Package).Filename
		info.Files = append(info.Files, file)
		info.Names = append(info.Names, fileName)

		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}

			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}

				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					continue
				}

				si := &StructInfo{
					ID:   TypeID{PkgPath: pkg.PkgPath, Name: ts.Name.Name},
					File: fileName,
					Pos:  pkg.Fset.Position(ts.Name.Pos()),
				}
				a.collectFields(pkg, st, NewTypePath(ts.Name.Name), si)

				info.Structs = append(info.Structs, si)
				a.graph.Structs[si.ID] = si
			}
		}
	}

	log.Debug().
		Str("package", pkg.PkgPath).
		Int("files", len(info.Files)).
		Int("structs", len(info.Structs)).
		Msg("package analyzed")

	a.graph.Packages = append(a.graph.Packages, info)
}

// collectFields appends the fields of st to si. Anonymous struct types used
// as field types are flattened into si under the field's path.
func (a *Analyzer) collectFields(pkg *packages.Package, st *ast.StructType, path *TypePath, si *StructInfo) {
	for _, field := range st.Fields.List {
		goType := pkg.TypesInfo.TypeOf(field.Type)

		var tag string
		if field.Tag != nil {
			if unquoted, err := strconv.Unquote(field.Tag.Value); err == nil {
				tag = unquoted
			}
		}

		names := fieldNames(field)
		for _, n := range names {
			si.Fields = append(si.Fields, FieldInfo{
				Name:     n.Name,
				Path:     path.Field(n.Name).String(),
				Exported: token.IsExported(n.Name),
				Embedded: len(field.Names) == 0,
				Type:     a.analyzeType(goType),
				Shape:    ClassifyOption(goType),
				Layer:    OuterLayer(goType),
				Tag:      reflect.StructTag(tag),
				Index:    len(si.Fields),
				Node:     field,
				Pos:      pkg.Fset.Position(n.Pos()),
			})
		}

		// Names sharing one declaration share the nested struct node too.
		if nested := anonymousStruct(field.Type); nested != nil && len(names) > 0 {
			a.collectFields(pkg, nested, path.Field(names[0].Name), si)
		}
	}
}

// fieldNames returns the declared names of a field, or the implied name of
// an embedded field.
func fieldNames(field *ast.Field) []*ast.Ident {
	if len(field.Names) > 0 {
		return field.Names
	}

	if id := embeddedIdent(field.Type); id != nil {
		return []*ast.Ident{id}
	}

	return nil
}

func embeddedIdent(expr ast.Expr) *ast.Ident {
	switch e := expr.(type) {
	case *ast.Ident:
		return e
	case *ast.StarExpr:
		return embeddedIdent(e.X)
	case *ast.SelectorExpr:
		return e.Sel
	case *ast.IndexExpr:
		return embeddedIdent(e.X)
	case *ast.IndexListExpr:
		return embeddedIdent(e.X)
	case *ast.ParenExpr:
		return embeddedIdent(e.X)
	default:
		return nil
	}
}

func anonymousStruct(expr ast.Expr) *ast.StructType {
	switch e := expr.(type) {
	case *ast.StructType:
		return e
	case *ast.StarExpr:
		return anonymousStruct(e.X)
	case *ast.ParenExpr:
		return anonymousStruct(e.X)
	default:
		return nil
	}
}

// analyzeType recursively analyzes a go/types.Type and returns a TypeInfo.
func (a *Analyzer) analyzeType(t types.Type) *TypeInfo {
	if t == nil {
		return &TypeInfo{Kind: TypeKindUnknown}
	}

	// Check cache to handle recursive types
	if cached, ok := a.typeCache[t]; ok {
		return cached
	}

	info := &TypeInfo{
		GoType: t,
	}

	// Pre-cache to handle recursive types (we'll fill in details)
	a.typeCache[t] = info

	switch tt := types.Unalias(t).(type) {
	case *types.Named:
		a.analyzeNamedType(tt, info)

	case *types.Basic:
		info.Kind = TypeKindBasic

	case *types.Pointer:
		info.Kind = TypeKindPointer
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Slice:
		info.Kind = TypeKindSlice
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Array:
		info.Kind = TypeKindArray
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Map:
		info.Kind = TypeKindMap
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Struct:
		info.Kind = TypeKindStruct

	default:
		// Interfaces, channels, type parameters, etc.
		info.Kind = TypeKindUnknown
	}

	return info
}

// analyzeNamedType analyzes a named type.
func (a *Analyzer) analyzeNamedType(named *types.Named, info *TypeInfo) {
	obj := named.Obj()
	info.ID = TypeID{Name: obj.Name()}
	if obj.Pkg() != nil {
		info.ID.PkgPath = obj.Pkg().Path()
	}

	if isOptionNamed(named) {
		info.Kind = TypeKindOption
		info.ElemType = a.analyzeType(named.TypeArgs().At(0))

		return
	}

	switch ut := named.Underlying().(type) {
	case *types.Struct:
		info.Kind = TypeKindStruct

	case *types.Basic:
		// e.g., type OrderStatus string
		info.Kind = TypeKindAlias
		info.ElemType = a.analyzeType(ut)

	case *types.Pointer:
		info.Kind = TypeKindPointer
		info.ElemType = a.analyzeType(ut.Elem())

	default:
		info.Kind = TypeKindExternal
	}
}
