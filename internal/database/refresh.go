package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"git.sr.ht/~jakintosh/stacks/internal/service"
)

func (s *SQLiteStore) RefreshTokenStore() service.RefreshTokenStore {
	return s
}

func (s *SQLiteStore) Insert(
	ctx context.Context,
	record *service.RefreshTokenRecord,
) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_token (token, jwt_id, account_id, issued_at, expires_at, used, revoked)
		VALUES (?1, ?2, ?3, ?4, ?5, 0, 0);`,
		record.Token,
		record.JwtID,
		record.AccountID,
		record.IssuedAt.Unix(),
		record.ExpiresAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			// with 256 bits of entropy this should never happen
			return fmt.Errorf("%w: refresh token collision", service.ErrConflict)
		}
		return fmt.Errorf("couldn't insert refresh token: %v", err)
	}
	return nil
}

func (s *SQLiteStore) Find(
	ctx context.Context,
	token string,
) (
	*service.RefreshTokenRecord,
	error,
) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token, jwt_id, account_id, issued_at, expires_at, used, revoked
		FROM refresh_token
		WHERE token=?1;`,
		token,
	)

	record := &service.RefreshTokenRecord{}
	var issuedAt, expiresAt int64
	err := row.Scan(
		&record.Token,
		&record.JwtID,
		&record.AccountID,
		&issuedAt,
		&expiresAt,
		&record.Used,
		&record.Revoked,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, service.ErrTokenNotFound
		}
		return nil, fmt.Errorf("couldn't scan refresh token: %v", err)
	}
	record.IssuedAt = time.Unix(issuedAt, 0)
	record.ExpiresAt = time.Unix(expiresAt, 0)
	return record, nil
}

// MarkUsed consumes the token with a single conditional update, so two
// concurrent redemptions of the same token can't both succeed: the loser
// matches zero rows and observes ErrTokenUsed.
func (s *SQLiteStore) MarkUsed(
	ctx context.Context,
	token string,
) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE refresh_token
		SET used=1
		WHERE token=?1 AND used=0 AND revoked=0;`,
		token,
	)
	if err != nil {
		return fmt.Errorf("couldn't mark refresh token used: %v", err)
	}
	if resultsEmpty(result) {
		return service.ErrTokenUsed
	}
	return nil
}

func (s *SQLiteStore) Revoke(
	ctx context.Context,
	token string,
) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE refresh_token
		SET revoked=1
		WHERE token=?1;`,
		token,
	)
	if err != nil {
		return fmt.Errorf("couldn't revoke refresh token: %v", err)
	}
	if resultsEmpty(result) {
		return service.ErrTokenNotFound
	}
	return nil
}

func resultsEmpty(result sql.Result) bool {
	count, err := result.RowsAffected()
	if err != nil {
		return false
	}
	return count == 0
}
