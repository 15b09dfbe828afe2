package account

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/willemschots/accounts/internal/email"
	"github.com/willemschots/accounts/internal/errorz"
)

// Kinds of rule violations, every violation wraps one of them.
var (
	ErrRequired = errors.New("required")
	ErrLength   = errors.New("invalid length")
	ErrFormat   = errors.New("invalid format")
	ErrMismatch = errors.New("values do not match")
	ErrNotPast  = errors.New("not in the past")
)

const (
	minNameLen     = 2
	maxNameLen     = 50
	minUsernameLen = 3
	maxUsernameLen = 30
	minPasswordLen = 8
	maxPasswordLen = 100
	phoneDigits    = 10
	postalDigits   = 6
	maxAddressLen  = 200
	maxRegionLen   = 50
)

// ruleError is a human readable violation of a rule kind.
type ruleError struct {
	msg  string
	kind error
}

func (e ruleError) Error() string {
	return e.msg
}

func (e ruleError) Unwrap() error {
	return e.kind
}

// Violations checks every field of sub and returns all violations, keyed by
// the external field name. An empty result means sub is valid.
//
// Dates of birth must be strictly before today. When requirePassword is false
// the password fields are only checked if either of them is filled in.
func Violations(sub Submission, today Date, requirePassword bool) errorz.InvalidInput {
	var v violations

	v.name("firstName", "First name", sub.FirstName)
	v.name("lastName", "Last name", sub.LastName)
	v.username(sub.Username)
	v.email(sub.Email)

	if requirePassword || sub.WantsPasswordChange() {
		v.password(sub.Password.plaintext(), sub.ConfirmPassword.plaintext())
	}

	v.phone(sub.PhoneNumber)
	v.dateOfBirth(sub.DateOfBirth, today)
	v.gender(sub.Gender)

	v.maxLen("address", "Address", sub.Address, maxAddressLen)
	v.maxLen("city", "City", sub.City, maxRegionLen)
	v.maxLen("state", "State", sub.State, maxRegionLen)
	v.postalCode(sub.PostalCode)
	v.maxLen("country", "Country", sub.Country, maxRegionLen)

	return v.errs
}

type violations struct {
	errs errorz.InvalidInput
}

func (v *violations) add(key string, kind error, format string, args ...any) {
	v.errs = append(v.errs, errorz.Keyed{
		Key: key,
		Err: ruleError{msg: fmt.Sprintf(format, args...), kind: kind},
	})
}

func (v *violations) name(key, label, raw string) {
	val := strings.TrimSpace(raw)
	switch {
	case val == "":
		v.add(key, ErrRequired, "%s is required", label)
	case !lenBetween(val, minNameLen, maxNameLen):
		v.add(key, ErrLength, "%s must be between %d and %d characters", label, minNameLen, maxNameLen)
	}
}

func (v *violations) username(raw string) {
	val := strings.TrimSpace(raw)
	switch {
	case val == "":
		v.add("username", ErrRequired, "Username is required")
	case !lenBetween(val, minUsernameLen, maxUsernameLen):
		v.add("username", ErrLength, "Username must be between %d and %d characters", minUsernameLen, maxUsernameLen)
	case !allRunes(val, isUsernameRune):
		v.add("username", ErrFormat, "Username can only contain letters, numbers, and underscores")
	}
}

func (v *violations) email(raw string) {
	if isBlank(raw) {
		v.add("email", ErrRequired, "Email is required")
		return
	}

	if _, err := email.ParseAddress(raw); err != nil {
		v.add("email", ErrFormat, "Please provide a valid email address")
	}
}

func (v *violations) password(pwd, confirm string) {
	switch {
	case isBlank(pwd):
		v.add("password", ErrRequired, "Password is required")
	case !lenBetween(pwd, minPasswordLen, maxPasswordLen):
		v.add("password", ErrLength, "Password must be between %d and %d characters", minPasswordLen, maxPasswordLen)
	}

	switch {
	case isBlank(confirm):
		v.add("confirmPassword", ErrRequired, "Confirm password is required")
	case !isBlank(pwd) && pwd != confirm:
		v.add("confirmPassword", ErrMismatch, "Passwords do not match")
	}
}

func (v *violations) phone(raw string) {
	val := strings.TrimSpace(raw)
	switch {
	case val == "":
		v.add("phoneNumber", ErrRequired, "Phone number is required")
	case len(val) != phoneDigits || !allRunes(val, isDigit):
		v.add("phoneNumber", ErrFormat, "Phone number must be exactly %d digits", phoneDigits)
	}
}

func (v *violations) dateOfBirth(raw string, today Date) {
	val := strings.TrimSpace(raw)
	if val == "" {
		v.add("dateOfBirth", ErrRequired, "Date of birth is required")
		return
	}

	dob, err := ParseDate(val)
	if err != nil {
		v.add("dateOfBirth", ErrFormat, "Date of birth must be a date formatted as YYYY-MM-DD")
		return
	}

	if !dob.Before(today) {
		v.add("dateOfBirth", ErrNotPast, "Date of birth must be in the past")
	}
}

func (v *violations) gender(raw string) {
	val := strings.TrimSpace(raw)
	switch {
	case val == "":
		v.add("gender", ErrRequired, "Gender is required")
	case !Gender(val).valid():
		v.add("gender", ErrFormat, "Gender must be Male, Female, or Other")
	}
}

func (v *violations) postalCode(raw string) {
	val := strings.TrimSpace(raw)
	if val == "" {
		return
	}

	if len(val) != postalDigits || !allRunes(val, isDigit) {
		v.add("postalCode", ErrFormat, "Postal code must be exactly %d digits", postalDigits)
	}
}

func (v *violations) maxLen(key, label, raw string, max int) {
	if utf8.RuneCountInString(strings.TrimSpace(raw)) > max {
		v.add(key, ErrLength, "%s cannot exceed %d characters", label, max)
	}
}

func lenBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

func allRunes(s string, f func(r rune) bool) bool {
	for _, r := range s {
		if !f(r) {
			return false
		}
	}
	return true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isUsernameRune(r rune) bool {
	return isDigit(r) || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
