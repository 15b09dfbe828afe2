package db

import (
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// driverName is go-sqlite3 with the extra SQL functions registered on
// every connection.
const driverName = "sqlite3_accounts"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// fold lowercases all of Unicode, SQLite's lower() and LIKE only
			// know about ASCII letters.
			return conn.RegisterFunc("fold", Fold, true)
		},
	})
}

// Fold is the case folding used by the fold SQL function. Compare
// fold(column) against a Fold-ed value to match regardless of case.
func Fold(s string) string {
	return strings.ToLower(s)
}

// Both option sets enable foreign keys, WAL mode so readers and the writer
// don't block each other, and a busy timeout of 5 seconds.
// Writes use immediate transactions so a transaction takes the write lock
// on BEGIN instead of failing halfway with SQLITE_BUSY.
const (
	writeOptions = "?_foreign_keys=on&_journal_mode=wal&_busy_timeout=5000&_txlock=immediate"
	readOptions  = "?_query_only=on&_foreign_keys=on&_journal_mode=wal&_busy_timeout=5000"
)

// OpenSQLite opens a pool of SQLite connections. Different settings
// are appropriate for reading and writing, so OpenSQLite needs to know
// what the sql.DB will be used for.
//
// A writing pool holds a single connection. For ":memory:" databases this
// also means every caller sees the same database.
//
// See https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995
func OpenSQLite(dbFile string, write bool) (*sql.DB, error) {
	opts := readOptions
	if write {
		opts = writeOptions
	}

	db, err := sql.Open(driverName, dbFile+opts)
	if err != nil {
		return nil, err
	}

	if write {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		// keep the connection open.
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	return db, nil
}
