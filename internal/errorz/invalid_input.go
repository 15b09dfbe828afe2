package errorz

import (
	"errors"
	"strings"
)

// InvalidInput signals that a provided input is invalid due to the wrapped errors.
type InvalidInput []error

func (e InvalidInput) Error() string {
	var b strings.Builder
	b.WriteString("invalid input:\n")
	for _, err := range e {
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

func (e InvalidInput) Unwrap() []error {
	return e
}

// Fields returns the message of every Keyed error by its key.
// When a key has multiple errors the first one wins.
func (e InvalidInput) Fields() map[string]string {
	fields := make(map[string]string, len(e))
	for _, err := range e {
		var k Keyed
		if !errors.As(err, &k) {
			continue
		}

		if _, ok := fields[k.Key]; !ok {
			fields[k.Key] = k.Err.Error()
		}
	}
	return fields
}
