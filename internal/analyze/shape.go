package analyze

import "go/types"

// OptionShape classifies how many optional layers a field type has.
type OptionShape int

const (
	// ShapeNone is a type that cannot be absent (string, []T, struct...).
	ShapeNone OptionShape = iota
	// ShapeSingle is *T or Option[T].
	ShapeSingle
	// ShapeDouble is Option[Option[T]] or Option[*T]: the outer layer must be
	// a struct so that a missing key and null decode differently.
	ShapeDouble
	// ShapeUnsupported has more than two optional layers, or two layers
	// behind a pointer (**T, *Option[T]). A JSON decoder sets the outer
	// pointer to nil for both a missing key and null.
	ShapeUnsupported
)

// OptionLayer is the kind of the outermost optional layer of a type.
type OptionLayer int

const (
	// LayerNone means the type has no optional layer.
	LayerNone OptionLayer = iota
	// LayerPointer is *T or a named pointer type. Absence is nil.
	LayerPointer
	// LayerStruct is Option[T]. Absence is the zero struct.
	LayerStruct
)

// optionTypeName is the name of generic types recognized as Option[T],
// whatever package declares them.
const optionTypeName = "Option"

// String returns a human-readable representation of the OptionShape.
func (s OptionShape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeSingle:
		return "single"
	case ShapeDouble:
		return "double"
	case ShapeUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// IsOptional reports whether the shape has at least one optional layer.
func (s OptionShape) IsOptional() bool {
	return s == ShapeSingle || s == ShapeDouble
}

// ClassifyOption determines the OptionShape of t. Aliases and named pointer
// types are resolved, so `type MaybeInt = *int` is single-optional.
func ClassifyOption(t types.Type) OptionShape {
	depth := 0
	outer := OuterLayer(t)

	for t != nil {
		inner, layer := unwrapOption(t)
		if layer == LayerNone {
			break
		}

		depth++
		if depth > 2 {
			return ShapeUnsupported
		}

		t = inner
	}

	switch depth {
	case 0:
		return ShapeNone
	case 1:
		return ShapeSingle
	default:
		if outer == LayerPointer {
			return ShapeUnsupported
		}

		return ShapeDouble
	}
}

// OuterLayer returns the kind of the outermost optional layer of t.
func OuterLayer(t types.Type) OptionLayer {
	if t == nil {
		return LayerNone
	}

	_, layer := unwrapOption(t)

	return layer
}

// StripOptional removes the optional layers of t and returns the value type.
// Self-referential pointer types stop after a few layers.
func StripOptional(t types.Type) types.Type {
	for range 8 {
		inner, layer := unwrapOption(t)
		if layer == LayerNone {
			return t
		}

		t = inner
	}

	return t
}

// unwrapOption strips one optional layer from t and reports its kind.
func unwrapOption(t types.Type) (types.Type, OptionLayer) {
	switch tt := types.Unalias(t).(type) {
	case *types.Pointer:
		return tt.Elem(), LayerPointer

	case *types.Named:
		if isOptionNamed(tt) {
			return tt.TypeArgs().At(0), LayerStruct
		}

		if p, ok := tt.Underlying().(*types.Pointer); ok {
			return p.Elem(), LayerPointer
		}
	}

	return nil, LayerNone
}

// isOptionNamed reports whether n is an instantiated Option[T].
func isOptionNamed(n *types.Named) bool {
	args := n.TypeArgs()
	return n.Obj().Name() == optionTypeName && args != nil && args.Len() == 1
}
