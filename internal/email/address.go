package email

import (
	"errors"
	"net/mail"
	"strings"
)

// ErrInvalidEmail indicates an email address is not valid.
var ErrInvalidEmail = errors.New("invalid email address")

// Address is an email address without display name or comments.
type Address string

// ParseAddress trims the input and checks that it is shaped like an
// email address. It does not check that the address actually exists.
//
// The domain is lowercased, domains are case-insensitive. The local part
// is kept as is.
func ParseAddress(raw string) (Address, error) {
	trimmed := strings.TrimSpace(raw)

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", ErrInvalidEmail
	}

	// mail.ParseAddress accepts "Alice <alice@example.com>(comment)",
	// only the bare address part is allowed here.
	if addr.Address != trimmed {
		return "", ErrInvalidEmail
	}

	at := strings.LastIndex(addr.Address, "@")
	return Address(addr.Address[:at] + strings.ToLower(addr.Address[at:])), nil
}

func (a Address) String() string {
	return string(a)
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	addr, err := ParseAddress(string(text))
	if err != nil {
		return err
	}

	*a = addr
	return nil
}
