package db

import (
	"errors"
	"strings"

	"github.com/willemschots/accounts/internal/krypto"
)

// likeEscaper escapes the LIKE wildcards, the escape character is a backslash.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Query helps build SQL queries using bind parameters.
// Use Unsafe to write static parts of a query and the Param methods to
// add bind parameters. The final query and parameters can be retrieved
// using the Get method.
//
// The zero value is ready to use, but can't encrypt or blind index.
type Query struct {
	Encryptor     *krypto.Encryptor
	BlindIndexKey krypto.Key
	b             strings.Builder
	params        []any
	err           error
}

// Unsafe writes a non-parameterized part of a query.
func (q *Query) Unsafe(s string) {
	q.b.WriteString(s)
}

// Param writes a parameterized part of a query.
func (q *Query) Param(v any) {
	q.b.WriteString("?")
	q.params = append(q.params, v)
}

// Params writes multiple parameterized parts of a query separated by commas.
func (q *Query) Params(v ...any) {
	for i, p := range v {
		if i > 0 {
			q.b.WriteString(", ")
		}
		q.Param(p)
	}
}

// ParamEncrypted writes a parameterized part of a query and encrypts the value before adding it.
func (q *Query) ParamEncrypted(d []byte) {
	if q.Encryptor == nil {
		q.err = errors.Join(q.err, errors.New("no encryptor set"))
		return
	}

	enc, err := q.Encryptor.Encrypt(d)
	if err != nil {
		q.err = errors.Join(q.err, err)
		return
	}

	q.Param(enc)
}

// ParamBlindIndex writes a parameterized part of a query and adds a blind index of the value.
// Blind indexes need to be rebuilt if the key or the default argon2 parameters change.
func (q *Query) ParamBlindIndex(d []byte) {
	if q.BlindIndexKey.SecretValue() == nil {
		q.err = errors.Join(q.err, errors.New("no blind index key set"))
		return
	}

	hash, err := krypto.HashArgon2WithKey(d, q.BlindIndexKey)
	if err != nil {
		q.err = errors.Join(q.err, err)
		return
	}

	// the salt is the key, it should never be stored.
	hash.Salt = nil
	q.Param(hash.String())
}

// ParamContains writes a LIKE pattern that matches s anywhere in the column.
// Wildcards in s are matched literally. Use it as "column LIKE " + ParamContains.
func (q *Query) ParamContains(s string) {
	q.Param("%" + likeEscaper.Replace(s) + "%")
	q.b.WriteString(` ESCAPE '\'`)
}

// Get returns the constructed query and parameter values.
func (q *Query) Get() (string, []any, error) {
	return q.b.String(), q.params, q.err
}

// DecryptionTarget returns a value that decrypts while it is being scanned.
func (q *Query) DecryptionTarget() *Decryptable {
	return &Decryptable{
		encryptor: q.Encryptor,
	}
}

// Decryptable is a sql.Scanner for values written by ParamEncrypted.
type Decryptable struct {
	encryptor *krypto.Encryptor
	Data      []byte
}

func (d *Decryptable) Scan(src any) error {
	b, ok := src.([]byte)
	if !ok {
		return errors.New("invalid type")
	}

	if d.encryptor == nil {
		return errors.New("no encryptor set")
	}

	data, err := d.encryptor.Decrypt(b)
	if err != nil {
		return err
	}

	d.Data = data

	return nil
}
