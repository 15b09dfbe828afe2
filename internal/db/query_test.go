package db_test

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/willemschots/accounts/internal/db"
	"github.com/willemschots/accounts/internal/krypto"
)

func Test_Query(t *testing.T) {
	t.Run("ok, params", func(t *testing.T) {
		var q db.Query
		q.Unsafe("SELECT * FROM accounts WHERE id IN (")
		q.Params(1, 2, 3)
		q.Unsafe(") AND is_active = ")
		q.Param(true)

		got, params, err := q.Get()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "SELECT * FROM accounts WHERE id IN (?, ?, ?) AND is_active = ?"
		if got != want {
			t.Errorf("got\n%s\nwant\n%s", got, want)
		}

		wantParams := []any{1, 2, 3, true}
		if !reflect.DeepEqual(params, wantParams) {
			t.Errorf("got %v, want %v", params, wantParams)
		}
	})

	containsTests := map[string]struct {
		in   string
		want string
	}{
		"ok, plain":      {in: "jan", want: "%jan%"},
		"ok, percent":    {in: "50%", want: `%50\%%`},
		"ok, underscore": {in: "a_b", want: `%a\_b%`},
		"ok, backslash":  {in: `a\b`, want: `%a\\b%`},
	}

	for name, tc := range containsTests {
		t.Run(name, func(t *testing.T) {
			var q db.Query
			q.Unsafe("first_name LIKE ")
			q.ParamContains(tc.in)

			got, params, err := q.Get()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != `first_name LIKE ? ESCAPE '\'` {
				t.Errorf("unexpected query %s", got)
			}

			if len(params) != 1 || params[0] != tc.want {
				t.Errorf("got %v, want [%s]", params, tc.want)
			}
		})
	}

	t.Run("ok, encrypted param", func(t *testing.T) {
		enc := must(krypto.NewEncryptor([]krypto.Key{
			must(krypto.ParseKey("2b671594b775f371eab4050b4d58326682df6b1a6cc2e886717b1a26b4d6c45d")),
		}))

		q := db.Query{Encryptor: enc}
		q.ParamEncrypted([]byte("jane@example.com"))

		_, params, err := q.Get()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		target := q.DecryptionTarget()
		err = target.Scan(params[0])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !bytes.Equal(target.Data, []byte("jane@example.com")) {
			t.Errorf("got %q", target.Data)
		}
	})

	t.Run("fail, no encryptor", func(t *testing.T) {
		var q db.Query
		q.ParamEncrypted([]byte("jane@example.com"))

		_, _, err := q.Get()
		if err == nil {
			t.Fatalf("wanted error, got <nil>")
		}
	})

	t.Run("fail, no blind index key", func(t *testing.T) {
		var q db.Query
		q.ParamBlindIndex([]byte("jane@example.com"))

		_, _, err := q.Get()
		if err == nil {
			t.Fatalf("wanted error, got <nil>")
		}
	})
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
