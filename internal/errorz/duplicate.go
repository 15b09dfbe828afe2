package errorz

import "fmt"

// Duplicate signals that Value is already in use for Key by another resource.
type Duplicate struct {
	Key   string
	Value string
}

func (d Duplicate) Error() string {
	return fmt.Sprintf("%s %q is already in use", d.Key, d.Value)
}

func (d Duplicate) Unwrap() error {
	return ErrConstraintViolated
}
