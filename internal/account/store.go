package account

import (
	"context"

	"github.com/willemschots/accounts/internal/email"
)

// Filter is used to filter accounts.
// Returned accounts must match all the provided fields.
// If a field is empty or nil, it's ignored.
type Filter struct {
	IDs       []int
	Emails    []email.Address
	Usernames []string
	IsActive  *bool
	// NameContains matches a case-insensitive substring of the first or last name.
	NameContains string
}

// Store provides access to the account store.
// Accounts are always returned ordered by ID.
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)
	FindAccounts(ctx context.Context, filter *Filter) ([]Account, error)
}

// Tx is a transaction. If an error occurs on any of the Create/Update/Delete/Find
// methods, the transaction is considered to have failed and should be rolled back.
// Tx is not safe for concurrent use.
//
// The store enforces unique usernames and emails, violations are
// reported as errorz.Duplicate.
type Tx interface {
	Commit() error
	Rollback() error

	// CreateAccount sets the ID, CreatedAt and UpdatedAt fields of a.
	CreateAccount(a *Account) error
	// UpdateAccount refreshes the UpdatedAt field of a. It returns
	// errorz.ErrNotFound if no account has the ID of a.
	UpdateAccount(a *Account) error
	// DeleteAccount returns errorz.ErrNotFound if no account has the ID.
	DeleteAccount(id int) error
	FindAccounts(filter *Filter) ([]Account, error)
}
