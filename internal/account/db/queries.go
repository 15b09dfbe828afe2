package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/willemschots/accounts/internal/account"
	"github.com/willemschots/accounts/internal/db"
	"github.com/willemschots/accounts/internal/email"
	"github.com/willemschots/accounts/internal/errorz"
)

type execFunc func(ctx context.Context, query string, params ...any) (sql.Result, error)
type queryFunc func(ctx context.Context, query string, params ...any) (*sql.Rows, error)

func insertAccount(ctx context.Context, q *db.Query, ef execFunc, a account.Account) (int, error) {
	if a.ID != 0 {
		return 0, fmt.Errorf("account already has id %d: %w", a.ID, errorz.ErrConstraintViolated)
	}

	q.Unsafe(`INSERT INTO accounts (first_name, last_name, username, email_encrypted, email_blind_index, password_hash, `)
	q.Unsafe(`phone_number, date_of_birth, gender, address, city, state, postal_code, country, `)
	q.Unsafe(`is_active, email_verified, created_at, updated_at) VALUES (`)
	q.Params(a.FirstName, a.LastName, a.Username)
	q.Unsafe(`, `)
	q.ParamEncrypted([]byte(a.Email))
	q.Unsafe(`, `)
	q.ParamBlindIndex([]byte(a.Email))
	q.Unsafe(`, `)
	q.Params(
		a.PasswordHash.String(), a.PhoneNumber, a.DateOfBirth, string(a.Gender),
		a.Address, a.City, a.State, a.PostalCode, a.Country,
		a.IsActive, a.EmailVerified, a.CreatedAt, a.UpdatedAt,
	)
	q.Unsafe(`)`)

	s, params, err := q.Get()
	if err != nil {
		return 0, err
	}

	result, err := ef(ctx, s, params...)
	if err != nil {
		return 0, mapWriteErr(err, a)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, errorz.MapDBErr(err)
	}

	return int(id), nil
}

func updateAccount(ctx context.Context, q *db.Query, ef execFunc, a account.Account) error {
	q.Unsafe(`UPDATE accounts SET first_name = `)
	q.Param(a.FirstName)

	q.Unsafe(`, last_name = `)
	q.Param(a.LastName)

	q.Unsafe(`, username = `)
	q.Param(a.Username)

	q.Unsafe(`, email_encrypted = `)
	q.ParamEncrypted([]byte(a.Email))

	q.Unsafe(`, email_blind_index = `)
	q.ParamBlindIndex([]byte(a.Email))

	q.Unsafe(`, password_hash = `)
	q.Param(a.PasswordHash.String())

	q.Unsafe(`, phone_number = `)
	q.Param(a.PhoneNumber)

	q.Unsafe(`, date_of_birth = `)
	q.Param(a.DateOfBirth)

	q.Unsafe(`, gender = `)
	q.Param(string(a.Gender))

	q.Unsafe(`, address = `)
	q.Param(a.Address)

	q.Unsafe(`, city = `)
	q.Param(a.City)

	q.Unsafe(`, state = `)
	q.Param(a.State)

	q.Unsafe(`, postal_code = `)
	q.Param(a.PostalCode)

	q.Unsafe(`, country = `)
	q.Param(a.Country)

	q.Unsafe(`, is_active = `)
	q.Param(a.IsActive)

	q.Unsafe(`, email_verified = `)
	q.Param(a.EmailVerified)

	q.Unsafe(`, updated_at = `)
	q.Param(a.UpdatedAt)

	q.Unsafe(` WHERE id = `)
	q.Param(a.ID)

	s, params, err := q.Get()
	if err != nil {
		return err
	}

	result, err := ef(ctx, s, params...)
	if err != nil {
		return mapWriteErr(err, a)
	}

	return expectAffected(result, a.ID)
}

func deleteAccount(ctx context.Context, ef execFunc, id int) error {
	result, err := ef(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return expectAffected(result, id)
}

func expectAffected(result sql.Result, id int) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return errorz.MapDBErr(err)
	}

	if rows == 0 {
		return fmt.Errorf("account %d: %w", id, errorz.ErrNotFound)
	}

	return nil
}

// mapWriteErr maps violations of the unique constraints to errorz.Duplicate.
func mapWriteErr(err error, a account.Account) error {
	err = errorz.MapDBErr(err)
	if !errors.Is(err, errorz.ErrConstraintViolated) {
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "accounts.email_blind_index"):
		return errorz.Duplicate{Key: "email", Value: string(a.Email)}
	case strings.Contains(msg, "accounts.username"):
		return errorz.Duplicate{Key: "username", Value: a.Username}
	default:
		return err
	}
}

func selectAccounts(ctx context.Context, q *db.Query, qf queryFunc, f *account.Filter) ([]account.Account, error) {
	q.Unsafe(`SELECT id, first_name, last_name, username, email_encrypted, password_hash, `)
	q.Unsafe(`phone_number, date_of_birth, gender, address, city, state, postal_code, country, `)
	q.Unsafe(`is_active, email_verified, created_at, updated_at FROM accounts WHERE 1=1 `)

	if len(f.IDs) > 0 {
		q.Unsafe(`AND id IN (`)
		q.Params(anySlice(f.IDs)...)
		q.Unsafe(`) `)
	}

	if len(f.Emails) > 0 {
		q.Unsafe(`AND email_blind_index IN (`)
		for i, addr := range f.Emails {
			if i > 0 {
				q.Unsafe(`, `)
			}
			q.ParamBlindIndex([]byte(addr))
		}
		q.Unsafe(`) `)
	}

	if len(f.Usernames) > 0 {
		q.Unsafe(`AND username IN (`)
		q.Params(anySlice(f.Usernames)...)
		q.Unsafe(`) `)
	}

	if f.IsActive != nil {
		q.Unsafe(`AND is_active = `)
		q.Param(*f.IsActive)
		q.Unsafe(` `)
	}

	if f.NameContains != "" {
		term := db.Fold(f.NameContains)
		q.Unsafe(`AND (fold(first_name) LIKE `)
		q.ParamContains(term)
		q.Unsafe(` OR fold(last_name) LIKE `)
		q.ParamContains(term)
		q.Unsafe(`) `)
	}

	q.Unsafe(`ORDER BY id ASC`)

	s, params, err := q.Get()
	if err != nil {
		return nil, err
	}

	rows, err := qf(ctx, s, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	out := make([]account.Account, 0)
	for rows.Next() {
		var (
			a          account.Account
			gender     string
			emailBytes = q.DecryptionTarget()
		)

		err := rows.Scan(
			&a.ID, &a.FirstName, &a.LastName, &a.Username, emailBytes, &a.PasswordHash,
			&a.PhoneNumber, &a.DateOfBirth, &gender, &a.Address, &a.City, &a.State, &a.PostalCode, &a.Country,
			&a.IsActive, &a.EmailVerified, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, errorz.MapDBErr(err)
		}

		a.Gender = account.Gender(gender)
		a.Email, err = email.ParseAddress(string(emailBytes.Data))
		if err != nil {
			return nil, err
		}

		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return out, nil
}

func anySlice[T any](s []T) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
