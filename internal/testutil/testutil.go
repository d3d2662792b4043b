// Package testutil provides test environment setup and utilities for
// internal package tests.
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"git.sr.ht/~jakintosh/stacks/internal/api"
	"git.sr.ht/~jakintosh/stacks/internal/database"
	"git.sr.ht/~jakintosh/stacks/internal/service"
	"git.sr.ht/~jakintosh/stacks/internal/tokens"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningSecret is the HMAC secret shared by every test environment, so
// tests can hand-craft tokens that verify against the env's signer.
const SigningSecret = "test-signing-secret"

// Issuer is the iss claim used by test environments.
const Issuer = "test.stacks.local"

// AccessTTL keeps test access tokens live long enough that a freshly
// minted token is reliably unexpired within a test run.
const AccessTTL = 30 * time.Second

// TestEnv provides all dependencies needed for testing
type TestEnv struct {
	DB      *database.SQLiteStore
	Service *service.Service
	Signer  *tokens.Signer
	Router  http.Handler
}

// SetupTestEnv creates an isolated test environment with in-memory SQLite
func SetupTestEnv(
	t *testing.T,
) *TestEnv {
	t.Helper()

	db := database.NewSQLiteStore(":memory:", database.PasswordModeTesting)

	signer, err := tokens.NewSigner([]byte(SigningSecret), Issuer, AccessTTL)
	if err != nil {
		t.Fatalf("failed to create test signer: %v", err)
	}

	svc := service.New(
		db.IdentityProvider(),
		db.RefreshTokenStore(),
		db.BookStore(),
		signer,
		service.DefaultRefreshTTL,
	)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return &TestEnv{
		DB:      db,
		Service: svc,
		Signer:  signer,
	}
}

// SetupTestEnvWithRouter creates TestEnv and configures the API router
func SetupTestEnvWithRouter(
	t *testing.T,
) *TestEnv {
	t.Helper()
	env := SetupTestEnv(t)
	a := api.New(env.Service)
	env.Router = a.Router()
	return env
}

// RegisterTestAccount creates an account through the full Register flow
// and returns its live token pair.
func (env *TestEnv) RegisterTestAccount(
	t *testing.T,
	email string,
	password string,
) *service.TokenPair {
	t.Helper()
	pair, err := env.Service.Register(context.Background(), service.Registration{
		Email:    email,
		Password: password,
		Name:     "Test Account",
		Mobile:   "555-0100",
	})
	if err != nil {
		t.Fatalf("failed to register test account: %v", err)
	}
	return pair
}

// FindTestAccount looks up a registered account by email.
func (env *TestEnv) FindTestAccount(
	t *testing.T,
	email string,
) *service.Account {
	t.Helper()
	account, err := env.DB.FindByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("failed to find test account: %v", err)
	}
	return account
}

// MintExpiredAccessToken hand-signs an access token whose expiry is
// already in the past, something the real signer never produces. It
// verifies against the env's signer and returns the token and its jti.
func (env *TestEnv) MintExpiredAccessToken(
	t *testing.T,
	accountID string,
	email string,
) (
	string,
	string,
) {
	t.Helper()

	jti := uuid.NewString()
	now := time.Now()
	claims := tokens.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			ID:        jti,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-30 * time.Second)),
		},
	}
	encoded, err := jwt.
		NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(SigningSecret))
	if err != nil {
		t.Fatalf("failed to sign expired access token: %v", err)
	}
	return encoded, jti
}

// IssueExpiredPair builds a refreshable pair for the account: an expired
// access token plus a stored, unused refresh record bound to its jti.
func (env *TestEnv) IssueExpiredPair(
	t *testing.T,
	email string,
) (
	accessToken string,
	refreshToken string,
) {
	t.Helper()

	account := env.FindTestAccount(t, email)
	accessToken, jti := env.MintExpiredAccessToken(t, account.ID, account.Email)

	refreshToken, err := tokens.NewRefreshToken()
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}

	now := time.Now()
	err = env.DB.Insert(context.Background(), &service.RefreshTokenRecord{
		Token:     refreshToken,
		JwtID:     jti,
		AccountID: account.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(service.DefaultRefreshTTL),
	})
	if err != nil {
		t.Fatalf("failed to store refresh token: %v", err)
	}
	return accessToken, refreshToken
}
