package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.sr.ht/~jakintosh/stacks/internal/tokens"
)

// Refresh exchanges an expired access token plus its paired refresh token
// for a brand-new pair. The checks run in a fixed order and fail closed;
// nothing is written until every check has passed.
func (s *Service) Refresh(
	ctx context.Context,
	accessToken string,
	refreshToken string,
) (
	*TokenPair,
	error,
) {
	// structural, signature, and algorithm checks
	claims, state, err := s.signer.Verify(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	// a live access token has no business being refreshed
	if state != tokens.StateExpired {
		return nil, ErrTokenNotExpired
	}

	record, err := s.refreshStore.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("%w: token lookup failed: %v", ErrInternal, err)
	}

	if record.Used {
		return nil, ErrTokenUsed
	}
	if record.Revoked {
		return nil, ErrTokenRevoked
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, ErrRefreshExpired
	}
	if record.JwtID != claims.ID {
		return nil, ErrTokenMismatch
	}

	// consume before minting; the store's conditional update is what makes
	// two concurrent redemptions resolve to a single winner
	if err := s.refreshStore.MarkUsed(ctx, refreshToken); err != nil {
		if errors.Is(err, ErrTokenUsed) {
			return nil, ErrTokenUsed
		}
		return nil, fmt.Errorf("%w: couldn't consume token: %v", ErrInternal, err)
	}

	account, err := s.identity.FindByID(ctx, record.AccountID)
	if err != nil {
		return nil, fmt.Errorf("%w: owner lookup failed: %v", ErrInternal, err)
	}

	return s.issueTokens(ctx, account)
}
