package account_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/willemschots/accounts/internal/account"
	"github.com/willemschots/accounts/internal/errorz"
)

var today = account.NewDate(2024, time.June, 15)

func testSubmission(modFunc func(*account.Submission)) account.Submission {
	sub := account.Submission{
		FirstName:       "Jane",
		LastName:        "Doe",
		Username:        "jane_doe",
		Email:           "jane@example.com",
		Password:        account.NewPassword("Secret123"),
		ConfirmPassword: account.NewPassword("Secret123"),
		PhoneNumber:     "9876543210",
		DateOfBirth:     "1990-05-01",
		Gender:          "Female",
	}

	if modFunc != nil {
		modFunc(&sub)
	}

	return sub
}

func Test_Violations(t *testing.T) {
	okTests := map[string]func(*account.Submission){
		"ok, required fields only": nil,
		"ok, all optional fields": func(s *account.Submission) {
			s.Address = "1 Main Street"
			s.City = "Springfield"
			s.State = "Oregon"
			s.PostalCode = "123456"
			s.Country = "USA"
		},
		"ok, minimum lengths": func(s *account.Submission) {
			s.FirstName = "Al"
			s.LastName = "Bo"
			s.Username = "abc"
			s.Password = account.NewPassword("12345678")
			s.ConfirmPassword = account.NewPassword("12345678")
		},
		"ok, maximum lengths": func(s *account.Submission) {
			s.FirstName = strings.Repeat("a", 50)
			s.LastName = strings.Repeat("b", 50)
			s.Username = strings.Repeat("c", 30)
			s.Password = account.NewPassword(strings.Repeat("d", 100))
			s.ConfirmPassword = account.NewPassword(strings.Repeat("d", 100))
			s.Address = strings.Repeat("e", 200)
			s.City = strings.Repeat("f", 50)
			s.State = strings.Repeat("g", 50)
			s.Country = strings.Repeat("h", 50)
		},
		"ok, lengths count characters not bytes": func(s *account.Submission) {
			s.FirstName = strings.Repeat("ë", 50)
			s.City = strings.Repeat("ø", 50)
		},
		"ok, surrounding whitespace is ignored": func(s *account.Submission) {
			s.FirstName = "  Jane "
			s.Email = " jane@example.com "
			s.PhoneNumber = " 9876543210"
			s.Gender = "Female "
		},
		"ok, born yesterday": func(s *account.Submission) {
			s.DateOfBirth = "2024-06-14"
		},
		"ok, username with digits and underscores": func(s *account.Submission) {
			s.Username = "J_4ne_"
		},
		"ok, gender other": func(s *account.Submission) {
			s.Gender = "Other"
		},
	}

	for name, modFunc := range okTests {
		t.Run(name, func(t *testing.T) {
			got := account.Violations(testSubmission(modFunc), today, true)
			if len(got) != 0 {
				t.Errorf("unexpected violations: %v", got)
			}
		})
	}

	failTests := map[string]struct {
		modFunc func(*account.Submission)
		key     string
		kind    error
	}{
		"fail, blank first name": {
			modFunc: func(s *account.Submission) { s.FirstName = "   " },
			key:     "firstName", kind: account.ErrRequired,
		},
		"fail, first name too short": {
			modFunc: func(s *account.Submission) { s.FirstName = "J" },
			key:     "firstName", kind: account.ErrLength,
		},
		"fail, last name too long": {
			modFunc: func(s *account.Submission) { s.LastName = strings.Repeat("a", 51) },
			key:     "lastName", kind: account.ErrLength,
		},
		"fail, blank username": {
			modFunc: func(s *account.Submission) { s.Username = "" },
			key:     "username", kind: account.ErrRequired,
		},
		"fail, username too short": {
			modFunc: func(s *account.Submission) { s.Username = "ab" },
			key:     "username", kind: account.ErrLength,
		},
		"fail, username too long": {
			modFunc: func(s *account.Submission) { s.Username = strings.Repeat("a", 31) },
			key:     "username", kind: account.ErrLength,
		},
		"fail, username with dash": {
			modFunc: func(s *account.Submission) { s.Username = "jane-doe" },
			key:     "username", kind: account.ErrFormat,
		},
		"fail, username with non-ascii letter": {
			modFunc: func(s *account.Submission) { s.Username = "janë" },
			key:     "username", kind: account.ErrFormat,
		},
		"fail, blank email": {
			modFunc: func(s *account.Submission) { s.Email = " " },
			key:     "email", kind: account.ErrRequired,
		},
		"fail, invalid email": {
			modFunc: func(s *account.Submission) { s.Email = "jane.example.com" },
			key:     "email", kind: account.ErrFormat,
		},
		"fail, blank password": {
			modFunc: func(s *account.Submission) { s.Password = account.NewPassword("  ") },
			key:     "password", kind: account.ErrRequired,
		},
		"fail, password too short": {
			modFunc: func(s *account.Submission) {
				s.Password = account.NewPassword("1234567")
				s.ConfirmPassword = account.NewPassword("1234567")
			},
			key: "password", kind: account.ErrLength,
		},
		"fail, password too long": {
			modFunc: func(s *account.Submission) {
				s.Password = account.NewPassword(strings.Repeat("a", 101))
				s.ConfirmPassword = account.NewPassword(strings.Repeat("a", 101))
			},
			key: "password", kind: account.ErrLength,
		},
		"fail, blank confirmation": {
			modFunc: func(s *account.Submission) { s.ConfirmPassword = account.NewPassword("") },
			key:     "confirmPassword", kind: account.ErrRequired,
		},
		"fail, passwords do not match": {
			modFunc: func(s *account.Submission) { s.ConfirmPassword = account.NewPassword("Secret124") },
			key:     "confirmPassword", kind: account.ErrMismatch,
		},
		"fail, passwords differ in case": {
			modFunc: func(s *account.Submission) { s.ConfirmPassword = account.NewPassword("secret123") },
			key:     "confirmPassword", kind: account.ErrMismatch,
		},
		"fail, blank phone number": {
			modFunc: func(s *account.Submission) { s.PhoneNumber = "" },
			key:     "phoneNumber", kind: account.ErrRequired,
		},
		"fail, phone number with 9 digits": {
			modFunc: func(s *account.Submission) { s.PhoneNumber = "987654321" },
			key:     "phoneNumber", kind: account.ErrFormat,
		},
		"fail, phone number with 11 digits": {
			modFunc: func(s *account.Submission) { s.PhoneNumber = "98765432101" },
			key:     "phoneNumber", kind: account.ErrFormat,
		},
		"fail, phone number with letters": {
			modFunc: func(s *account.Submission) { s.PhoneNumber = "98765abcde" },
			key:     "phoneNumber", kind: account.ErrFormat,
		},
		"fail, phone number with non-ascii digits": {
			modFunc: func(s *account.Submission) { s.PhoneNumber = "٠١٢٣٤٥٦٧٨٩" },
			key:     "phoneNumber", kind: account.ErrFormat,
		},
		"fail, blank date of birth": {
			modFunc: func(s *account.Submission) { s.DateOfBirth = "" },
			key:     "dateOfBirth", kind: account.ErrRequired,
		},
		"fail, invalid date of birth": {
			modFunc: func(s *account.Submission) { s.DateOfBirth = "01-05-1990" },
			key:     "dateOfBirth", kind: account.ErrFormat,
		},
		"fail, born today": {
			modFunc: func(s *account.Submission) { s.DateOfBirth = "2024-06-15" },
			key:     "dateOfBirth", kind: account.ErrNotPast,
		},
		"fail, born in the future": {
			modFunc: func(s *account.Submission) { s.DateOfBirth = "2030-01-01" },
			key:     "dateOfBirth", kind: account.ErrNotPast,
		},
		"fail, blank gender": {
			modFunc: func(s *account.Submission) { s.Gender = "" },
			key:     "gender", kind: account.ErrRequired,
		},
		"fail, lowercase gender": {
			modFunc: func(s *account.Submission) { s.Gender = "female" },
			key:     "gender", kind: account.ErrFormat,
		},
		"fail, unknown gender": {
			modFunc: func(s *account.Submission) { s.Gender = "Unknown" },
			key:     "gender", kind: account.ErrFormat,
		},
		"fail, postal code with 5 digits": {
			modFunc: func(s *account.Submission) { s.PostalCode = "12345" },
			key:     "postalCode", kind: account.ErrFormat,
		},
		"fail, postal code with letters": {
			modFunc: func(s *account.Submission) { s.PostalCode = "1234AB" },
			key:     "postalCode", kind: account.ErrFormat,
		},
		"fail, address too long": {
			modFunc: func(s *account.Submission) { s.Address = strings.Repeat("a", 201) },
			key:     "address", kind: account.ErrLength,
		},
		"fail, city too long": {
			modFunc: func(s *account.Submission) { s.City = strings.Repeat("a", 51) },
			key:     "city", kind: account.ErrLength,
		},
		"fail, state too long": {
			modFunc: func(s *account.Submission) { s.State = strings.Repeat("a", 51) },
			key:     "state", kind: account.ErrLength,
		},
		"fail, country too long": {
			modFunc: func(s *account.Submission) { s.Country = strings.Repeat("a", 51) },
			key:     "country", kind: account.ErrLength,
		},
	}

	for name, tc := range failTests {
		t.Run(name, func(t *testing.T) {
			got := account.Violations(testSubmission(tc.modFunc), today, true)
			if len(got) != 1 {
				t.Fatalf("expected exactly 1 violation, got %v", got)
			}

			var keyed errorz.Keyed
			if !errors.As(got[0], &keyed) {
				t.Fatalf("expected errorz.Keyed, got %T", got[0])
			}

			if keyed.Key != tc.key {
				t.Errorf("got key %q, want %q", keyed.Key, tc.key)
			}

			if !errors.Is(keyed, tc.kind) {
				t.Errorf("expected %v to wrap %v", keyed, tc.kind)
			}
		})
	}

	t.Run("ok, all violations at once", func(t *testing.T) {
		got := account.Violations(account.Submission{PostalCode: "1"}, today, true)

		wantKeys := []string{
			"firstName", "lastName", "username", "email", "password", "confirmPassword",
			"phoneNumber", "dateOfBirth", "gender", "postalCode",
		}

		gotKeys := make([]string, 0, len(got))
		for _, err := range got {
			var keyed errorz.Keyed
			if errors.As(err, &keyed) {
				gotKeys = append(gotKeys, keyed.Key)
			}
		}

		if !reflect.DeepEqual(gotKeys, wantKeys) {
			t.Errorf("got keys %v, want %v", gotKeys, wantKeys)
		}
	})

	t.Run("ok, messages", func(t *testing.T) {
		got := account.Violations(testSubmission(func(s *account.Submission) {
			s.PhoneNumber = "123"
			s.ConfirmPassword = account.NewPassword("other123")
		}), today, true).Fields()

		want := map[string]string{
			"phoneNumber":     "Phone number must be exactly 10 digits",
			"confirmPassword": "Passwords do not match",
		}

		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	passwordOptional := map[string]struct {
		modFunc func(*account.Submission)
		want    []string
	}{
		"ok, both blank": {
			modFunc: func(s *account.Submission) {
				s.Password = account.NewPassword("")
				s.ConfirmPassword = account.NewPassword("")
			},
			want: []string{},
		},
		"ok, both filled": {
			modFunc: nil,
			want:    []string{},
		},
		"fail, only password": {
			modFunc: func(s *account.Submission) {
				s.ConfirmPassword = account.NewPassword("")
			},
			want: []string{"confirmPassword"},
		},
		"fail, only confirmation": {
			modFunc: func(s *account.Submission) {
				s.Password = account.NewPassword("")
			},
			want: []string{"password"},
		},
	}

	for name, tc := range passwordOptional {
		t.Run("password optional, "+name, func(t *testing.T) {
			got := account.Violations(testSubmission(tc.modFunc), today, false)

			fields := got.Fields()
			if len(fields) != len(tc.want) {
				t.Fatalf("got violations %v, want keys %v", got, tc.want)
			}

			for _, key := range tc.want {
				if _, ok := fields[key]; !ok {
					t.Errorf("missing violation for %q in %v", key, got)
				}
			}
		})
	}
}

func Test_Submission_Profile(t *testing.T) {
	t.Run("ok, trimmed and parsed", func(t *testing.T) {
		sub := testSubmission(func(s *account.Submission) {
			s.FirstName = " Jane "
			s.Email = " jane@example.com"
			s.City = " Springfield "
		})

		got, err := sub.Profile(today, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := account.Profile{
			FirstName:   "Jane",
			LastName:    "Doe",
			Username:    "jane_doe",
			Email:       "jane@example.com",
			PhoneNumber: "9876543210",
			DateOfBirth: account.NewDate(1990, time.May, 1),
			Gender:      account.GenderFemale,
			City:        "Springfield",
		}

		if !reflect.DeepEqual(got, want) {
			t.Errorf("got\n%#v\nwant\n%#v\n", got, want)
		}
	})

	t.Run("fail, invalid input", func(t *testing.T) {
		sub := testSubmission(func(s *account.Submission) {
			s.Username = "x"
			s.Gender = "?"
		})

		_, err := sub.Profile(today, true)

		var invalid errorz.InvalidInput
		if !errors.As(err, &invalid) {
			t.Fatalf("expected errorz.InvalidInput, got %v", err)
		}

		if len(invalid) != 2 {
			t.Errorf("expected 2 violations, got %v", invalid)
		}
	})
}
