package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.sr.ht/~jakintosh/stacks/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

// PostgresStore mirrors SQLiteStore over a pgx connection pool. Timestamps
// are stored as unix seconds to keep both stores scan-compatible.
type PostgresStore struct {
	pool         *pgxpool.Pool
	passwordMode PasswordMode
}

func NewPostgresStore(
	ctx context.Context,
	databaseURL string,
	passwordMode PasswordMode,
) (
	*PostgresStore,
	error,
) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("couldn't create connection pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("couldn't reach database: %v", err)
	}

	if err := initPostgresSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to init database: %v", err)
	}

	return &PostgresStore{pool: pool, passwordMode: passwordMode}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func initPostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	schema := []string{`
		CREATE TABLE IF NOT EXISTS account (
			id      TEXT PRIMARY KEY,
			email   TEXT UNIQUE NOT NULL,
			name    TEXT NOT NULL,
			mobile  TEXT,
			secret  BYTEA NOT NULL
		);`, `
		CREATE TABLE IF NOT EXISTS refresh_token (
			token       TEXT PRIMARY KEY,
			jwt_id      TEXT NOT NULL,
			account_id  TEXT NOT NULL REFERENCES account (id),
			issued_at   BIGINT NOT NULL,
			expires_at  BIGINT NOT NULL,
			used        BOOLEAN NOT NULL DEFAULT FALSE,
			revoked     BOOLEAN NOT NULL DEFAULT FALSE
		);`, `
		CREATE TABLE IF NOT EXISTS book (
			id         BIGINT PRIMARY KEY,
			title      TEXT NOT NULL,
			author     TEXT,
			publisher  TEXT,
			is_avail   BOOLEAN NOT NULL DEFAULT TRUE
		);`,
	}
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to init table schema: %v", err)
		}
	}
	return nil
}

func (s *PostgresStore) IdentityProvider() service.IdentityProvider {
	return s
}

func (s *PostgresStore) RefreshTokenStore() service.RefreshTokenStore {
	return s
}

func (s *PostgresStore) BookStore() service.BookStore {
	return s
}

//
// identity provider

func (s *PostgresStore) FindByEmail(
	ctx context.Context,
	email string,
) (
	*service.Account,
	error,
) {
	return s.scanAccountRow(s.pool.QueryRow(ctx, `
		SELECT id, email, name, mobile
		FROM account
		WHERE email=$1;`,
		normalizeEmail(email),
	))
}

func (s *PostgresStore) FindByID(
	ctx context.Context,
	id string,
) (
	*service.Account,
	error,
) {
	return s.scanAccountRow(s.pool.QueryRow(ctx, `
		SELECT id, email, name, mobile
		FROM account
		WHERE id=$1;`,
		id,
	))
}

func (s *PostgresStore) CreateAccount(
	ctx context.Context,
	reg service.Registration,
) (
	*service.Account,
	error,
) {
	if err := validateRegistration(reg); err != nil {
		return nil, err
	}

	secret, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.passwordMode.Cost())
	if err != nil {
		return nil, fmt.Errorf("couldn't hash password: %v", err)
	}

	account := &service.Account{
		ID:     uuid.NewString(),
		Email:  normalizeEmail(reg.Email),
		Name:   reg.Name,
		Mobile: reg.Mobile,
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO account (id, email, name, mobile, secret)
		VALUES ($1, $2, $3, $4, $5);`,
		account.ID,
		account.Email,
		account.Name,
		account.Mobile,
		secret,
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, service.ErrEmailExists
		}
		return nil, fmt.Errorf("couldn't insert account: %v", err)
	}

	return account, nil
}

func (s *PostgresStore) VerifyPassword(
	ctx context.Context,
	accountID string,
	password string,
) error {
	var secret []byte
	err := s.pool.QueryRow(ctx, `
		SELECT secret
		FROM account
		WHERE id=$1;`,
		accountID,
	).Scan(&secret)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.ErrAccountNotFound
		}
		return fmt.Errorf("couldn't scan account secret: %v", err)
	}

	if err := bcrypt.CompareHashAndPassword(secret, []byte(password)); err != nil {
		return service.ErrInvalidCredentials
	}
	return nil
}

func (s *PostgresStore) scanAccountRow(row pgx.Row) (*service.Account, error) {
	account := &service.Account{}
	err := row.Scan(&account.ID, &account.Email, &account.Name, &account.Mobile)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrAccountNotFound
		}
		return nil, fmt.Errorf("couldn't scan account: %v", err)
	}
	return account, nil
}

//
// refresh token store

func (s *PostgresStore) Insert(
	ctx context.Context,
	record *service.RefreshTokenRecord,
) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO refresh_token (token, jwt_id, account_id, issued_at, expires_at, used, revoked)
		VALUES ($1, $2, $3, $4, $5, FALSE, FALSE);`,
		record.Token,
		record.JwtID,
		record.AccountID,
		record.IssuedAt.Unix(),
		record.ExpiresAt.Unix(),
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return fmt.Errorf("%w: refresh token collision", service.ErrConflict)
		}
		return fmt.Errorf("couldn't insert refresh token: %v", err)
	}
	return nil
}

func (s *PostgresStore) Find(
	ctx context.Context,
	token string,
) (
	*service.RefreshTokenRecord,
	error,
) {
	record := &service.RefreshTokenRecord{}
	var issuedAt, expiresAt int64
	err := s.pool.QueryRow(ctx, `
		SELECT token, jwt_id, account_id, issued_at, expires_at, used, revoked
		FROM refresh_token
		WHERE token=$1;`,
		token,
	).Scan(
		&record.Token,
		&record.JwtID,
		&record.AccountID,
		&issuedAt,
		&expiresAt,
		&record.Used,
		&record.Revoked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrTokenNotFound
		}
		return nil, fmt.Errorf("couldn't scan refresh token: %v", err)
	}
	record.IssuedAt = time.Unix(issuedAt, 0)
	record.ExpiresAt = time.Unix(expiresAt, 0)
	return record, nil
}

func (s *PostgresStore) MarkUsed(
	ctx context.Context,
	token string,
) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE refresh_token
		SET used=TRUE
		WHERE token=$1 AND used=FALSE AND revoked=FALSE;`,
		token,
	)
	if err != nil {
		return fmt.Errorf("couldn't mark refresh token used: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrTokenUsed
	}
	return nil
}

func (s *PostgresStore) Revoke(
	ctx context.Context,
	token string,
) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE refresh_token
		SET revoked=TRUE
		WHERE token=$1;`,
		token,
	)
	if err != nil {
		return fmt.Errorf("couldn't revoke refresh token: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrTokenNotFound
	}
	return nil
}

//
// book store

func (s *PostgresStore) ListBooks(
	ctx context.Context,
) (
	[]service.Book,
	error,
) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, author, publisher, is_avail
		FROM book
		ORDER BY id;`,
	)
	if err != nil {
		return nil, fmt.Errorf("couldn't query books: %v", err)
	}
	defer rows.Close()

	var books []service.Book
	for rows.Next() {
		var book service.Book
		err := rows.Scan(&book.ID, &book.Title, &book.Author, &book.Publisher, &book.Available)
		if err != nil {
			return nil, fmt.Errorf("couldn't scan book: %v", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("couldn't iterate books: %v", err)
	}
	return books, nil
}

func (s *PostgresStore) UpsertBook(
	ctx context.Context,
	book service.Book,
) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO book (id, title, author, publisher, is_avail)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title=excluded.title,
			author=excluded.author,
			publisher=excluded.publisher,
			is_avail=excluded.is_avail;`,
		book.ID,
		book.Title,
		book.Author,
		book.Publisher,
		book.Available,
	)
	if err != nil {
		return fmt.Errorf("couldn't upsert book: %v", err)
	}
	return nil
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
