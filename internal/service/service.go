// Package service implements the authentication protocol for the catalog
// backend: registration, login, and the single-use refresh token rotation
// that exchanges an expired access token for a fresh pair.
package service

import (
	"errors"
	"strings"
	"time"

	"git.sr.ht/~jakintosh/stacks/internal/tokens"
)

var (
	ErrEmailExists        = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenNotExpired    = errors.New("token not yet expired")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenUsed          = errors.New("token already used")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrTokenMismatch      = errors.New("token mismatch")
	ErrRefreshExpired     = errors.New("refresh token expired")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal error")
)

// ValidationErrors carries the identity provider's registration failures
// verbatim, one message per failed check.
type ValidationErrors []string

func (e ValidationErrors) Error() string {
	return strings.Join(e, "; ")
}

// DefaultRefreshTTL is the six month refresh token window.
const DefaultRefreshTTL = 180 * 24 * time.Hour

// TokenPair is the outcome of a successful auth operation.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service coordinates the auth flows. It depends on the capability
// interfaces in store.go for identity and persistence, and on the token
// signer for minting and verification.
type Service struct {
	identity     IdentityProvider
	refreshStore RefreshTokenStore
	books        BookStore
	signer       *tokens.Signer
	refreshTTL   time.Duration
}

func New(
	identity IdentityProvider,
	refreshStore RefreshTokenStore,
	books BookStore,
	signer *tokens.Signer,
	refreshTTL time.Duration,
) *Service {
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &Service{
		identity:     identity,
		refreshStore: refreshStore,
		books:        books,
		signer:       signer,
		refreshTTL:   refreshTTL,
	}
}
