package service

import (
	"context"
	"errors"
	"fmt"
)

func (s *Service) Login(
	ctx context.Context,
	email string,
	password string,
) (
	*TokenPair,
	error,
) {
	account, err := s.identity.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			// same outcome as a wrong password, so a caller can't
			// probe which addresses have accounts
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: account lookup failed: %v", ErrInternal, err)
	}

	if err := s.identity.VerifyPassword(ctx, account.ID, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: password check failed: %v", ErrInternal, err)
	}

	return s.issueTokens(ctx, account)
}
