// Package directive models the serialization directives carried by one
// struct tag key and reads and writes whole struct tags without losing the
// order of their keys.
//
// A directive tag value has the form used by encoding/json:
//
//	name,opt1,opt2:value
//
// The name element is a rename and is never interpreted. Options are either
// key-only flags (omitempty) or key:value pairs (with:double_option). The
// whole value "-" excludes the field from serialization.
package directive
