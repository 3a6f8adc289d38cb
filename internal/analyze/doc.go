// Package analyze provides package loading and struct field extraction.
//
// It uses golang.org/x/tools/go/packages with AST and go/types to build an
// in-memory model of every struct type declared in the loaded packages,
// including anonymous structs nested in fields.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: describes kind (struct/basic/alias/pointer/slice/external)
//   - OptionShape: how many optional layers a field type carries
//   - FieldInfo: field name, path, type, raw tag and the AST node to rewrite
//   - StructInfo: a struct declaration and its fields in declaration order
package analyze
