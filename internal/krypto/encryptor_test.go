package krypto_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/willemschots/accounts/internal/krypto"
)

const (
	testKey1 = "2b671594b775f371eab4050b4d58326682df6b1a6cc2e886717b1a26b4d6c45d"
	testKey2 = "90303dfed7994260ea4817a5ca8a392915cd401115b2f97495dadfcbcd14adbf"
)

func encryptorForTest(t *testing.T, rawKeys ...string) *krypto.Encryptor {
	t.Helper()

	keys := make([]krypto.Key, 0, len(rawKeys))
	for _, raw := range rawKeys {
		keys = append(keys, must(krypto.ParseKey(raw)))
	}

	enc, err := krypto.NewEncryptor(keys)
	if err != nil {
		t.Fatalf("failed to create encryptor: %v", err)
	}

	return enc
}

func Test_NewEncryptor(t *testing.T) {
	t.Run("fail, no keys", func(t *testing.T) {
		_, err := krypto.NewEncryptor(nil)
		if err == nil {
			t.Fatalf("wanted error, got <nil>")
		}
	})
}

func Test_Encryptor_EncryptAndDecrypt(t *testing.T) {
	okCases := map[string]struct {
		encKeys []string
		decKeys []string
	}{
		"ok, single key":            {encKeys: []string{testKey1}, decKeys: []string{testKey1}},
		"ok, multiple keys":         {encKeys: []string{testKey1, testKey2}, decKeys: []string{testKey1, testKey2}},
		"ok, decrypt with old key":  {encKeys: []string{testKey1}, decKeys: []string{testKey1, testKey2}},
		"ok, minimum length output": {encKeys: []string{testKey2}, decKeys: []string{testKey2}},
	}

	for name, tc := range okCases {
		t.Run(name, func(t *testing.T) {
			raw := []byte("alice@example.com")

			msg, err := encryptorForTest(t, tc.encKeys...).Encrypt(raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if bytes.Contains(msg, raw) {
				t.Fatalf("encrypted message contains plaintext")
			}

			got, err := encryptorForTest(t, tc.decKeys...).Decrypt(msg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !bytes.Equal(got, raw) {
				t.Fatalf("want %q, got %q", raw, got)
			}
		})
	}

	t.Run("fail, no key for this index", func(t *testing.T) {
		msg := must(encryptorForTest(t, testKey1, testKey2).Encrypt([]byte("secret")))

		_, err := encryptorForTest(t, testKey1).Decrypt(msg)
		if !errors.Is(err, krypto.ErrUnknownKey) {
			t.Fatalf("wanted error %v, got %v (via errors.Is)", krypto.ErrUnknownKey, err)
		}
	})

	t.Run("fail, key was changed", func(t *testing.T) {
		msg := must(encryptorForTest(t, testKey1).Encrypt([]byte("secret")))

		_, err := encryptorForTest(t, testKey2).Decrypt(msg)
		if err == nil {
			t.Fatalf("wanted error, got <nil>")
		}
	})

	for name, raw := range map[string][]byte{"nil": nil, "empty slice": {}} {
		t.Run("fail, encrypt "+name, func(t *testing.T) {
			_, err := encryptorForTest(t, testKey1).Encrypt(raw)
			if !errors.Is(err, krypto.ErrInvalidData) {
				t.Fatalf("wanted error %v, got %v (via errors.Is)", krypto.ErrInvalidData, err)
			}
		})
	}

	invalidDecrypt := map[string][]byte{
		"nil":            nil,
		"short of index": {0, 0, 0},
		"only index":     {0, 0, 0, 0},
		"only index and nonce": {
			0, 0, 0, 0, 1, 1, 1, 1,
			1, 1, 1, 1, 1, 1, 1, 1,
		},
	}

	for name, msg := range invalidDecrypt {
		t.Run("fail, decrypt "+name, func(t *testing.T) {
			_, err := encryptorForTest(t, testKey1).Decrypt(msg)
			if !errors.Is(err, krypto.ErrInvalidData) {
				t.Fatalf("wanted error %v, got %v (via errors.Is)", krypto.ErrInvalidData, err)
			}
		})
	}
}
