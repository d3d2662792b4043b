// Package database provides the persistent stores behind the auth and
// catalog capability interfaces: a SQLite store for single-node deployments
// and a Postgres store for everything else.
package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// PasswordMode controls bcrypt cost for credential hashing.
// Use PasswordModeProduction for real deployments and PasswordModeTesting
// only in tests.
type PasswordMode int

const (
	// PasswordModeProduction uses bcrypt.DefaultCost (10).
	PasswordModeProduction PasswordMode = iota
	// PasswordModeTesting uses bcrypt.MinCost (4) for fast test execution.
	// WARNING: This mode will panic if used outside of go test.
	PasswordModeTesting
)

// Cost returns the bcrypt cost for this mode.
// Panics if PasswordModeTesting is used outside of a test environment.
func (m PasswordMode) Cost() int {
	switch m {
	case PasswordModeTesting:
		// Go passes -test.* flags to the binary when running under go test
		for _, arg := range os.Args {
			if len(arg) > 5 && arg[:6] == "-test." {
				goto allowed
			}
		}
		panic("database: PasswordModeTesting used outside of test environment")
	allowed:
		return bcrypt.MinCost
	default:
		return bcrypt.DefaultCost
	}
}

type SQLiteStore struct {
	db           *sql.DB
	passwordMode PasswordMode
}

func NewSQLiteStore(dbPath string, passwordMode PasswordMode) *SQLiteStore {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		log.Fatalf("failed to connect to database: %v\n", err)
	}

	// every pooled connection to ":memory:" opens its own empty database,
	// so in-memory stores must stay on a single connection
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		log.Fatalf("failed to init database schema: couldn't enable foreign keys: %v\n", err)
	}

	if err := initSchema(db); err != nil {
		log.Fatalf("failed to init database: %v\n", err)
	}

	return &SQLiteStore{db: db, passwordMode: passwordMode}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	if err := initTable(db, "account", `
		CREATE TABLE IF NOT EXISTS account (
			id      TEXT PRIMARY KEY,
			email   TEXT UNIQUE NOT NULL,
			name    TEXT NOT NULL,
			mobile  TEXT,
			secret  BLOB NOT NULL
		);`,
	); err != nil {
		return err
	}

	if err := initTable(db, "refresh_token", `
		CREATE TABLE IF NOT EXISTS refresh_token (
			token       TEXT PRIMARY KEY,
			jwt_id      TEXT NOT NULL,
			account_id  TEXT NOT NULL,
			issued_at   INTEGER NOT NULL,
			expires_at  INTEGER NOT NULL,
			used        INTEGER NOT NULL DEFAULT 0,
			revoked     INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (account_id) REFERENCES account (id)
		);`,
	); err != nil {
		return err
	}

	if err := initTable(db, "book", `
		CREATE TABLE IF NOT EXISTS book (
			id         INTEGER PRIMARY KEY,
			title      TEXT NOT NULL,
			author     TEXT,
			publisher  TEXT,
			is_avail   INTEGER NOT NULL DEFAULT 1
		);`,
	); err != nil {
		return err
	}

	return nil
}

func initTable(
	db *sql.DB,
	name string,
	sql string,
) error {
	if _, err := db.Exec(sql); err != nil {
		return fmt.Errorf("failed to init '%s' table schema: %v", name, err)
	}
	return nil
}
