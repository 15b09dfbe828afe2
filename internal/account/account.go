package account

import (
	"time"

	"github.com/willemschots/accounts/internal/email"
	"github.com/willemschots/accounts/internal/krypto"
)

// Gender is one of a fixed set of values.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Genders lists the valid genders in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

func (g Gender) valid() bool {
	for _, v := range Genders {
		if g == v {
			return true
		}
	}
	return false
}

// Account is a registered user account as it is persisted.
//
// ID, CreatedAt and UpdatedAt are set by the store.
type Account struct {
	ID            int
	FirstName     string
	LastName      string
	Username      string
	Email         email.Address
	PasswordHash  krypto.Argon2Hash
	PhoneNumber   string
	DateOfBirth   Date
	Gender        Gender
	Address       string
	City          string
	State         string
	PostalCode    string
	Country       string
	IsActive      bool
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Profile holds the validated, user editable fields of an account.
type Profile struct {
	FirstName   string
	LastName    string
	Username    string
	Email       email.Address
	PhoneNumber string
	DateOfBirth Date
	Gender      Gender
	Address     string
	City        string
	State       string
	PostalCode  string
	Country     string
}

// newAccount creates an active, unverified account for p.
func newAccount(p Profile, hash krypto.Argon2Hash) Account {
	a := merge(Account{}, p, &hash)
	a.IsActive = true
	a.EmailVerified = false
	return a
}
