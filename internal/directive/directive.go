package directive

import "strings"

// Well-known directive keys.
const (
	KeyOmitEmpty = "omitempty"
	KeyOmitZero  = "omitzero"
	KeyDefault   = "default"
	KeyWith      = "with"
)

// SkipValue is the complete tag value that removes a field from serialization.
const SkipValue = "-"

// Handlers referenced by synthesized with: directives.
const (
	HandlerNullable     = "nullable"
	HandlerUnwrapOrSkip = "unwrap_or_skip"
	HandlerDoubleOption = "double_option"
)

// Directive is a single serialization instruction attached to a field.
type Directive struct {
	Key      string
	Value    string
	HasValue bool
}

// Flag returns a key-only directive.
func Flag(key string) Directive {
	return Directive{Key: key}
}

// KeyValue returns a key:value directive.
func KeyValue(key, value string) Directive {
	return Directive{Key: key, Value: value, HasValue: true}
}

// ParseDirective parses a single option token. The value starts after the
// first colon, so values may themselves contain colons.
func ParseDirective(token string) Directive {
	key, value, found := strings.Cut(token, ":")
	if !found {
		return Flag(token)
	}

	return KeyValue(key, value)
}

// String renders the directive as it appears inside a tag value.
func (d Directive) String() string {
	if d.HasValue {
		return d.Key + ":" + d.Value
	}

	return d.Key
}

// IsOwnedHandler reports whether d is a with: directive naming one of the
// handlers this tool synthesizes.
func (d Directive) IsOwnedHandler() bool {
	if d.Key != KeyWith || !d.HasValue {
		return false
	}

	switch d.Value {
	case HandlerNullable, HandlerUnwrapOrSkip, HandlerDoubleOption:
		return true
	default:
		return false
	}
}

// IsPresenceOmission reports whether d suppresses the field from output when
// its value is empty.
func (d Directive) IsPresenceOmission() bool {
	return !d.HasValue && (d.Key == KeyOmitEmpty || d.Key == KeyOmitZero)
}
