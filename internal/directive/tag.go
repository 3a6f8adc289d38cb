package directive

import "strings"

// Tag is the parsed value of one struct tag key.
type Tag struct {
	// Name is the rename element (may be empty).
	Name string
	// Directives are the options in declaration order.
	Directives []Directive
	// Present is true when the key exists in the struct tag.
	Present bool
	// Raw is the value as it was read; empty for synthesized tags.
	Raw string
}

// Parse parses a tag value. Empty option tokens are dropped.
func Parse(value string, present bool) Tag {
	t := Tag{Present: present, Raw: value}
	if !present {
		return t
	}

	parts := strings.Split(value, ",")
	t.Name = parts[0]

	for _, p := range parts[1:] {
		if p == "" {
			continue
		}

		t.Directives = append(t.Directives, ParseDirective(p))
	}

	return t
}

// IsSkip reports whether the tag excludes the field entirely.
func (t Tag) IsSkip() bool {
	return t.Present && t.Raw == SkipValue
}

// String renders the tag value.
func (t Tag) String() string {
	var b strings.Builder

	b.WriteString(t.Name)

	for _, d := range t.Directives {
		b.WriteByte(',')
		b.WriteString(d.String())
	}

	return b.String()
}

// Find returns the first directive with the given key and its index.
func (t Tag) Find(key string) (Directive, int, bool) {
	for i, d := range t.Directives {
		if d.Key == key {
			return d, i, true
		}
	}

	return Directive{}, -1, false
}

// Has reports whether a directive with the given key exists.
func (t Tag) Has(key string) bool {
	_, _, ok := t.Find(key)
	return ok
}

// Clone returns a deep copy of t.
func (t Tag) Clone() Tag {
	c := t
	if t.Directives != nil {
		c.Directives = append([]Directive(nil), t.Directives...)
	}

	return c
}

// Equal compares name and directives. Raw and Present are ignored when both
// tags render to the same value.
func (t Tag) Equal(o Tag) bool {
	if t.Name != o.Name || len(t.Directives) != len(o.Directives) {
		return false
	}

	for i := range t.Directives {
		if t.Directives[i] != o.Directives[i] {
			return false
		}
	}

	return true
}
