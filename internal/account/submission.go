package account

import (
	"strings"

	"github.com/willemschots/accounts/internal/email"
)

// Submission is untrusted registration or update input, as it was
// submitted through a form or the JSON API.
type Submission struct {
	FirstName       string   `json:"firstName" schema:"firstName"`
	LastName        string   `json:"lastName" schema:"lastName"`
	Username        string   `json:"username" schema:"username"`
	Email           string   `json:"email" schema:"email"`
	Password        Password `json:"password" schema:"password"`
	ConfirmPassword Password `json:"confirmPassword" schema:"confirmPassword"`
	PhoneNumber     string   `json:"phoneNumber" schema:"phoneNumber"`
	DateOfBirth     string   `json:"dateOfBirth" schema:"dateOfBirth"`
	Gender          string   `json:"gender" schema:"gender"`
	Address         string   `json:"address" schema:"address"`
	City            string   `json:"city" schema:"city"`
	State           string   `json:"state" schema:"state"`
	PostalCode      string   `json:"postalCode" schema:"postalCode"`
	Country         string   `json:"country" schema:"country"`
}

// WantsPasswordChange reports whether either password field was filled in.
func (s Submission) WantsPasswordChange() bool {
	return !isBlank(s.Password.plaintext()) || !isBlank(s.ConfirmPassword.plaintext())
}

// Profile validates s and returns its trimmed and parsed fields.
// All violations are returned at once as an errorz.InvalidInput.
func (s Submission) Profile(today Date, requirePassword bool) (Profile, error) {
	violations := Violations(s, today, requirePassword)
	if len(violations) > 0 {
		return Profile{}, violations
	}

	// the errors were checked by Violations.
	addr, _ := email.ParseAddress(s.Email)
	dob, _ := ParseDate(strings.TrimSpace(s.DateOfBirth))

	return Profile{
		FirstName:   strings.TrimSpace(s.FirstName),
		LastName:    strings.TrimSpace(s.LastName),
		Username:    strings.TrimSpace(s.Username),
		Email:       addr,
		PhoneNumber: strings.TrimSpace(s.PhoneNumber),
		DateOfBirth: dob,
		Gender:      Gender(strings.TrimSpace(s.Gender)),
		Address:     strings.TrimSpace(s.Address),
		City:        strings.TrimSpace(s.City),
		State:       strings.TrimSpace(s.State),
		PostalCode:  strings.TrimSpace(s.PostalCode),
		Country:     strings.TrimSpace(s.Country),
	}, nil
}

