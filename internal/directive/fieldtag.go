package directive

import (
	"errors"
	"fmt"

	"github.com/fatih/structtag"
)

// ErrMalformedStructTag is returned when a struct tag does not follow the
// conventional key:"value" format.
var ErrMalformedStructTag = errors.New("malformed struct tag")

// ParseFieldTag parses a raw struct tag (without the surrounding
// backquotes). Keys keep their declared order.
func ParseFieldTag(raw string) (*structtag.Tags, error) {
	tags, err := structtag.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedStructTag, raw, err)
	}

	// A blank tag parses to nil.
	if tags == nil {
		tags = &structtag.Tags{}
	}

	return tags, nil
}

// SetValue stores value under key, in place when the key exists and
// appended otherwise. The value is kept whole; it is not split into
// options.
func SetValue(tags *structtag.Tags, key, value string) error {
	return tags.Set(&structtag.Tag{Key: key, Name: value})
}
