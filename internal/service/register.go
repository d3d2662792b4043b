package service

import (
	"context"
	"errors"
	"fmt"
)

func (s *Service) Register(
	ctx context.Context,
	reg Registration,
) (
	*TokenPair,
	error,
) {
	existing, err := s.identity.FindByEmail(ctx, reg.Email)
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: account lookup failed: %v", ErrInternal, err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	account, err := s.identity.CreateAccount(ctx, reg)
	if err != nil {
		var validation ValidationErrors
		switch {
		case errors.As(err, &validation):
			// surface the provider's failures verbatim
			return nil, validation
		case errors.Is(err, ErrEmailExists):
			return nil, ErrEmailExists
		default:
			return nil, fmt.Errorf("%w: account creation failed: %v", ErrInternal, err)
		}
	}

	return s.issueTokens(ctx, account)
}
