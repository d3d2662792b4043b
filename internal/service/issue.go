package service

import (
	"context"
	"fmt"
	"time"

	"git.sr.ht/~jakintosh/stacks/internal/tokens"
)

// issueTokens mints an access token, generates its paired refresh token,
// and persists the refresh record bound to the new jti. Success is only
// reported once the record is durably stored; an insert failure fails the
// whole mint and no pair is returned.
func (s *Service) issueTokens(
	ctx context.Context,
	account *Account,
) (
	*TokenPair,
	error,
) {
	accessToken, jti, _, err := s.signer.Mint(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't mint access token: %v", ErrInternal, err)
	}

	refreshToken, err := tokens.NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't generate refresh token: %v", ErrInternal, err)
	}

	now := time.Now()
	record := &RefreshTokenRecord{
		Token:     refreshToken,
		JwtID:     jti,
		AccountID: account.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	if err := s.refreshStore.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: couldn't store refresh token: %v", ErrInternal, err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
