package db

import (
	"context"
	"database/sql"

	"github.com/willemschots/accounts/internal/account"
)

// Tx is a write transaction on the Store. Reads inside the transaction
// see its uncommitted writes.
type Tx struct {
	ctx   context.Context
	tx    *sql.Tx
	store *Store
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// CreateAccount creates an account in the database.
// It sets the ID, CreatedAt and UpdatedAt fields of a when successful.
func (t *Tx) CreateAccount(a *account.Account) error {
	now := t.store.now()

	created := *a
	created.CreatedAt = now
	created.UpdatedAt = now

	id, err := insertAccount(t.ctx, t.store.newQuery(), t.tx.ExecContext, created)
	if err != nil {
		return err
	}

	created.ID = id
	*a = created

	return nil
}

// UpdateAccount updates an account in the database.
// It refreshes the UpdatedAt field of a when successful, CreatedAt is never changed.
// It returns errorz.ErrNotFound if no account is found.
func (t *Tx) UpdateAccount(a *account.Account) error {
	updated := *a
	updated.UpdatedAt = t.store.now()

	err := updateAccount(t.ctx, t.store.newQuery(), t.tx.ExecContext, updated)
	if err != nil {
		return err
	}

	*a = updated

	return nil
}

// DeleteAccount deletes the account with the given id.
// It returns errorz.ErrNotFound if no account is found.
func (t *Tx) DeleteAccount(id int) error {
	return deleteAccount(t.ctx, t.tx.ExecContext, id)
}

// FindAccounts queries for accounts based on the provided filter.
// It returns an empty slice if no accounts are found.
func (t *Tx) FindAccounts(filter *account.Filter) ([]account.Account, error) {
	return selectAccounts(t.ctx, t.store.newQuery(), t.tx.QueryContext, filter)
}
