package account_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/willemschots/accounts/internal/account"
	"github.com/willemschots/accounts/internal/krypto"
)

func Test_Password_HashAndMatch(t *testing.T) {
	hasher := must(krypto.NewArgon2Hasher(krypto.Argon2Params{MemoryKiB: 64, Iterations: 1, Parallelism: 1}))
	pwd := account.NewPassword("Secret123")

	hash, err := pwd.Hash(hasher)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if strings.Contains(hash.String(), "Secret123") {
		t.Errorf("hash %s contains the plaintext", hash)
	}

	if !pwd.Match(hash) {
		t.Errorf("expected password to match its hash")
	}

	if account.NewPassword("Secret124").Match(hash) {
		t.Errorf("expected other password not to match")
	}
}

func Test_Password_PreventExposure(t *testing.T) {
	const raw = "Secret123"
	pwd := account.NewPassword(raw)

	assert := func(t *testing.T, s string) {
		t.Helper()
		if strings.Contains(s, raw) {
			t.Errorf("output\n%s\ncontains the plaintext password", s)
		}
		if !strings.Contains(s, krypto.SecretMarker) {
			t.Errorf("output\n%s\ndoes not contain secret marker %s", s, krypto.SecretMarker)
		}
	}

	t.Run("ok, fmt", func(t *testing.T) {
		assert(t, fmt.Sprintf("%s", pwd)) //nolint:gosimple
		assert(t, fmt.Sprintf("%v", pwd))
		assert(t, fmt.Sprintf("%#v", pwd))
		assert(t, fmt.Sprintf("%+v", testSubmission(nil)))
	})

	t.Run("ok, log output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		logger.Info("attempting to log a password", "password", pwd)

		assert(t, buf.String())
	})

	t.Run("ok, json", func(t *testing.T) {
		var buf bytes.Buffer

		// the marker contains < and >, which are escaped by default.
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)

		err := enc.Encode(testSubmission(nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		assert(t, buf.String())
	})
}

func Test_Password_UnmarshalJSON(t *testing.T) {
	var sub account.Submission
	err := json.Unmarshal([]byte(`{"password":"Secret123","confirmPassword":"Secret123"}`), &sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hasher := must(krypto.NewArgon2Hasher(krypto.Argon2Params{MemoryKiB: 64, Iterations: 1, Parallelism: 1}))
	hash := must(sub.Password.Hash(hasher))

	if !account.NewPassword("Secret123").Match(hash) {
		t.Errorf("expected decoded password to be the submitted one")
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
