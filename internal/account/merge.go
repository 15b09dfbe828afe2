package account

import "github.com/willemschots/accounts/internal/krypto"

// merge returns existing with every profile field replaced by p.
//
//	field                         | update
//	------------------------------+-------------------------------------
//	names, username, email, phone | replaced
//	date of birth, gender         | replaced
//	address, city, state,         | replaced, blank clears the old value
//	postal code, country          |
//	password hash                 | replaced when newHash is not nil
//	ID, IsActive, EmailVerified   | kept
//	CreatedAt, UpdatedAt          | kept, the store refreshes UpdatedAt
func merge(existing Account, p Profile, newHash *krypto.Argon2Hash) Account {
	out := existing

	out.FirstName = p.FirstName
	out.LastName = p.LastName
	out.Username = p.Username
	out.Email = p.Email
	out.PhoneNumber = p.PhoneNumber
	out.DateOfBirth = p.DateOfBirth
	out.Gender = p.Gender
	out.Address = p.Address
	out.City = p.City
	out.State = p.State
	out.PostalCode = p.PostalCode
	out.Country = p.Country

	if newHash != nil {
		out.PasswordHash = *newHash
	}

	return out
}
