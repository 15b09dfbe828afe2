package errorz

// Keyed ties an error to a key, usually the name of the field that
// failed validation. The key is what API clients and forms see.
type Keyed struct {
	Key string
	Err error
}

func (k Keyed) Error() string {
	if k.Err == nil {
		return k.Key
	}
	return k.Key + ": " + k.Err.Error()
}

func (k Keyed) Unwrap() error {
	return k.Err
}
