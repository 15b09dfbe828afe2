package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/willemschots/accounts/internal/account"
	"github.com/willemschots/accounts/internal/db"
	"github.com/willemschots/accounts/internal/krypto"
)

// Store is the SQLite implementation of account.Store.
//
// Emails are stored encrypted, lookups by email use a blind index.
type Store struct {
	readDB        *sql.DB
	writeDB       *sql.DB
	encryptor     *krypto.Encryptor
	blindIndexKey krypto.Key

	// NowFunc provides the timestamps of created and updated accounts.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

// New creates a new Store. readDB and writeDB may be the same database.
func New(readDB, writeDB *sql.DB, encryptor *krypto.Encryptor, blindIndexKey krypto.Key) *Store {
	return &Store{
		readDB:        readDB,
		writeDB:       writeDB,
		encryptor:     encryptor,
		blindIndexKey: blindIndexKey,
		NowFunc:       time.Now,
	}
}

// BeginTx starts a new write transaction.
func (s *Store) BeginTx(ctx context.Context) (account.Tx, error) {
	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &Tx{
		ctx:   ctx,
		tx:    tx,
		store: s,
	}, nil
}

// FindAccounts queries the read database for accounts matching filter.
// It returns an empty slice if no accounts are found.
func (s *Store) FindAccounts(ctx context.Context, filter *account.Filter) ([]account.Account, error) {
	return selectAccounts(ctx, s.newQuery(), s.readDB.QueryContext, filter)
}

func (s *Store) newQuery() *db.Query {
	return &db.Query{
		Encryptor:     s.encryptor,
		BlindIndexKey: s.blindIndexKey,
	}
}

// now returns the current time in UTC without a monotonic clock reading,
// which is how it is read back from the database.
func (s *Store) now() time.Time {
	return s.NowFunc().UTC()
}
