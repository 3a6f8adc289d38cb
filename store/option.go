package store

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// Option holds a value that may be absent.
//
// In JSON an absent Option is left out by omitzero. null decodes to None,
// unless T has its own null (a pointer or another Option): then
// Option[*T] and Option[Option[T]] decode null to Some(None), which keeps a
// missing key and null apart.
type Option[T any] struct {
	value T
	set   bool
}

// Some returns an Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, set: true}
}

// None returns an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is set.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsZero reports whether o is None.
func (o Option[T]) IsZero() bool {
	return !o.set
}

// MarshalJSON encodes None as null and Some(v) as v.
func (o Option[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}

	return json.Marshal(o.value)
}

// UnmarshalJSON decodes a present key.
func (o *Option[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) && !holdsNull[T]() {
		*o = None[T]()
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*o = Some(v)

	return nil
}

// holdsNull reports whether T represents JSON null itself.
func holdsNull[T any]() bool {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface {
		return true
	}

	return reflect.PointerTo(t).Implements(reflect.TypeFor[json.Unmarshaler]())
}
