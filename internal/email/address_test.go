package email_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/willemschots/accounts/internal/email"
)

func Test_ParseAddress(t *testing.T) {
	okTests := map[string]struct {
		raw  string
		want email.Address
	}{
		"ok, shortest possible": {
			raw:  "a@b",
			want: "a@b",
		},
		"ok, typical": {
			raw:  "jane@example.com",
			want: "jane@example.com",
		},
		"ok, plus and dots": {
			raw:  "jane.doe+accounts@mail.example.com",
			want: "jane.doe+accounts@mail.example.com",
		},
		"ok, domain is lowercased": {
			raw:  "Jane.Doe@Mail.EXAMPLE.com",
			want: "Jane.Doe@mail.example.com",
		},
		"ok, whitespace is trimmed": {
			raw:  " 	jane@example.com  ",
			want: "jane@example.com",
		},
	}

	for name, tc := range okTests {
		t.Run(name, func(t *testing.T) {
			got, err := email.ParseAddress(tc.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}

	failTests := map[string]string{
		"fail, empty":                 "",
		"fail, whitespace only":       " 	",
		"fail, missing @":             "jane.example.com",
		"fail, missing domain":        "jane@",
		"fail, missing local part":    "@example.com",
		"fail, with name":             "Jane <jane@example.com>",
		"fail, with name and comment": "Jane <jane@example.com>(comment)",
		"fail, two addresses":         "jane@example.com, john@example.com",
	}

	for name, raw := range failTests {
		t.Run(name, func(t *testing.T) {
			_, err := email.ParseAddress(raw)
			if !errors.Is(err, email.ErrInvalidEmail) {
				t.Fatalf("expected error to be email.ErrInvalidEmail via errors.Is, but got %v", err)
			}
		})
	}
}

func Test_Address_JSON(t *testing.T) {
	t.Run("ok, round trip", func(t *testing.T) {
		var got struct {
			Email email.Address `json:"email"`
		}

		err := json.Unmarshal([]byte(`{"email":" jane@example.com "}`), &got)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out, err := json.Marshal(got)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if string(out) != `{"email":"jane@example.com"}` {
			t.Errorf("got %s", out)
		}
	})

	t.Run("fail, invalid address", func(t *testing.T) {
		var got email.Address
		err := json.Unmarshal([]byte(`"nope"`), &got)
		if !errors.Is(err, email.ErrInvalidEmail) {
			t.Fatalf("expected error to be email.ErrInvalidEmail via errors.Is, but got %v", err)
		}
	})
}
