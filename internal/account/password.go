package account

import (
	"fmt"

	"github.com/willemschots/accounts/internal/krypto"
)

// Hasher turns plaintext secrets into salted one-way hashes.
type Hasher interface {
	Hash(data []byte) (krypto.Argon2Hash, error)
}

// Password is a plaintext password as it was submitted.
//
// It should never be persisted, logged or exposed in any other way. To
// prevent accidents, it redacts itself when formatted or marshalled.
//
// A Password can only be hashed or matched against an existing hash.
type Password struct {
	plain []byte
}

// NewPassword wraps a plaintext password. It does not validate it, use
// Violations for that.
func NewPassword(plain string) Password {
	return Password{plain: []byte(plain)}
}

// Hash hashes the plaintext password.
func (p Password) Hash(h Hasher) (krypto.Argon2Hash, error) {
	return h.Hash(p.plain)
}

// Match reports whether the plaintext password matches the given hash.
func (p Password) Match(h krypto.Argon2Hash) bool {
	return h.MatchBytes(p.plain)
}

func (p Password) Format(f fmt.State, verb rune) {
	f.Write([]byte(krypto.SecretMarker))
}

func (p Password) MarshalText() ([]byte, error) {
	return []byte(krypto.SecretMarker), nil
}

// UnmarshalText keeps the text as is, form and JSON decoders
// use it to fill a Password.
func (p *Password) UnmarshalText(text []byte) error {
	p.plain = append([]byte(nil), text...)
	return nil
}

func (p Password) plaintext() string {
	return string(p.plain)
}
