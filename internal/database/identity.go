package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"git.sr.ht/~jakintosh/stacks/internal/service"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func (s *SQLiteStore) IdentityProvider() service.IdentityProvider {
	return s
}

func (s *SQLiteStore) FindByEmail(
	ctx context.Context,
	email string,
) (
	*service.Account,
	error,
) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, mobile
		FROM account
		WHERE email=?1;`,
		normalizeEmail(email),
	)
	return scanAccount(row)
}

func (s *SQLiteStore) FindByID(
	ctx context.Context,
	id string,
) (
	*service.Account,
	error,
) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, mobile
		FROM account
		WHERE id=?1;`,
		id,
	)
	return scanAccount(row)
}

func (s *SQLiteStore) CreateAccount(
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

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO account (id, email, name, mobile, secret)
		VALUES (?1, ?2, ?3, ?4, ?5);`,
		account.ID,
		account.Email,
		account.Name,
		account.Mobile,
		secret,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, service.ErrEmailExists
		}
		return nil, fmt.Errorf("couldn't insert account: %v", err)
	}

	return account, nil
}

func (s *SQLiteStore) VerifyPassword(
	ctx context.Context,
	accountID string,
	password string,
) error {
	row := s.db.QueryRowContext(ctx, `
		SELECT secret
		FROM account
		WHERE id=?1;`,
		accountID,
	)

	var secret []byte
	if err := row.Scan(&secret); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return service.ErrAccountNotFound
		}
		return fmt.Errorf("couldn't scan account secret: %v", err)
	}

	if err := bcrypt.CompareHashAndPassword(secret, []byte(password)); err != nil {
		return service.ErrInvalidCredentials
	}
	return nil
}

func scanAccount(row *sql.Row) (*service.Account, error) {
	account := &service.Account{}
	err := row.Scan(&account.ID, &account.Email, &account.Name, &account.Mobile)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, service.ErrAccountNotFound
		}
		return nil, fmt.Errorf("couldn't scan account: %v", err)
	}
	return account, nil
}

// normalizeEmail makes the unique email column effectively
// case-insensitive: everything is stored and queried lowercased.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateRegistration applies the account policy shared by every provider
// implementation. Failures are collected and surfaced verbatim.
func validateRegistration(reg service.Registration) error {
	var failures service.ValidationErrors

	email := normalizeEmail(reg.Email)
	if email == "" {
		failures = append(failures, "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		failures = append(failures, "Email is invalid")
	}

	if len(reg.Password) < 6 {
		failures = append(failures, "Passwords must be at least 6 characters")
	}

	if strings.TrimSpace(reg.Name) == "" {
		failures = append(failures, "Name is required")
	}

	if len(failures) > 0 {
		return failures
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
