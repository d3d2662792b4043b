package service

import (
	"context"
	"time"
)

// Account is an identity-provider-owned record. It is created on Register,
// read on Login and refresh owner lookup, and never otherwise mutated by
// the auth flows.
type Account struct {
	ID     string
	Email  string
	Name   string
	Mobile string
}

// Registration is the input to account creation. The password never
// outlives the call; only its hash is stored, by the provider.
type Registration struct {
	Email    string
	Password string
	Name     string
	Mobile   string
}

// RefreshTokenRecord is the persisted state of one issued refresh token.
// JwtID binds the record to exactly the access token it was minted with.
// Records are never deleted in normal flow; consumed and revoked rows stay
// behind for replay detection.
type RefreshTokenRecord struct {
	Token     string
	JwtID     string
	AccountID string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Used      bool
	Revoked   bool
}

// Book is a plain catalog record.
type Book struct {
	ID        int64
	Title     string
	Author    string
	Publisher string
	Available bool
}

// IdentityProvider owns account records and credential verification.
// CreateAccount reports policy failures as ValidationErrors and a taken
// email as ErrEmailExists; VerifyPassword reports a mismatch as
// ErrInvalidCredentials. Email lookup is case-insensitive.
type IdentityProvider interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	CreateAccount(ctx context.Context, reg Registration) (*Account, error)
	VerifyPassword(ctx context.Context, accountID string, password string) error
}

// RefreshTokenStore persists issued refresh tokens and their redemption
// state. MarkUsed must be atomic on the token's used flag: of two
// concurrent calls for the same unconsumed token, exactly one succeeds and
// the other returns ErrTokenUsed.
type RefreshTokenStore interface {
	Insert(ctx context.Context, record *RefreshTokenRecord) error
	Find(ctx context.Context, token string) (*RefreshTokenRecord, error)
	MarkUsed(ctx context.Context, token string) error

	// Revoke is an administrative action; no auth flow calls it.
	Revoke(ctx context.Context, token string) error
}

// BookStore persists catalog records.
type BookStore interface {
	ListBooks(ctx context.Context) ([]Book, error)
	UpsertBook(ctx context.Context, book Book) error
}
