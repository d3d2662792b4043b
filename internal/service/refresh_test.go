package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"git.sr.ht/~jakintosh/stacks/internal/service"
	"git.sr.ht/~jakintosh/stacks/internal/testutil"
	"git.sr.ht/~jakintosh/stacks/internal/tokens"
)

func TestRefresh_Success(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	env.RegisterTestAccount(t, "alice@example.com", "password")
	accessToken, refreshToken := env.IssueExpiredPair(t, "alice@example.com")

	pair, err := env.Service.Refresh(context.Background(), accessToken, refreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected non-empty token pair")
	}
	if pair.RefreshToken == refreshToken {
		t.Error("expected a brand-new refresh token")
	}

	// the redeemed record is consumed, the replacement is fresh
	old, err := env.DB.Find(context.Background(), refreshToken)
	if err != nil {
		t.Fatalf("old record should remain for audit: %v", err)
	}
	if !old.Used {
		t.Error("expected redeemed record to be marked used")
	}
	replacement, err := env.DB.Find(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("replacement record not in store: %v", err)
	}
	if replacement.Used || replacement.Revoked {
		t.Error("expected replacement record to be neither used nor revoked")
	}
}

func TestRefresh_SingleUse(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	env.RegisterTestAccount(t, "alice@example.com", "password")
	accessToken, refreshToken := env.IssueExpiredPair(t, "alice@example.com")

	if _, err := env.Service.Refresh(context.Background(), accessToken, refreshToken); err != nil {
		t.Fatalf("first redemption failed: %v", err)
	}

	_, err := env.Service.Refresh(context.Background(), accessToken, refreshToken)
	if !errors.Is(err, service.ErrTokenUsed) {
		t.Errorf("second redemption: expected ErrTokenUsed, got %v", err)
	}
}

func TestRefresh_ConcurrentRedemption(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	env.RegisterTestAccount(t, "alice@example.com", "password")
	accessToken, refreshToken := env.IssueExpiredPair(t, "alice@example.com")

	const callers = 2
	results := make(chan error, callers)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < callers; i++ {
		go func() {
			start.Wait()
			_, err := env.Service.Refresh(context.Background(), accessToken, refreshToken)
			results <- err
		}()
	}
	start.Done()

	var successes, used int
	for i := 0; i < callers; i++ {
		err := <-results
		switch {
		case err == nil:
			successes++
		case errors.Is(err, service.ErrTokenUsed):
			used++
		default:
			t.Fatalf("unexpected refresh outcome: %v", err)
		}
	}

	if successes != 1 || used != 1 {
		t.Errorf("expected exactly one winner and one loser, got %d successes, %d used", successes, used)
	}
}

func TestRefresh_LiveAccessTokenRejected(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	// the pair from Register carries a still-valid access token
	pair := env.RegisterTestAccount(t, "alice@example.com", "password")

	_, err := env.Service.Refresh(context.Background(), pair.AccessToken, pair.RefreshToken)
	if !errors.Is(err, service.ErrTokenNotExpired) {
		t.Errorf("expected ErrTokenNotExpired, got %v", err)
	}
}

func TestRefresh_UnknownRefreshToken(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	env.RegisterTestAccount(t, "alice@example.com", "password")
	account := env.FindTestAccount(t, "alice@example.com")
	accessToken, _ := env.MintExpiredAccessToken(t, account.ID, account.Email)

	unknown, err := tokens.NewRefreshToken()
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}

	_, err = env.Service.Refresh(context.Background(), accessToken, unknown)
	if !errors.Is(err, service.ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestRefresh_RevokedToken(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	env.RegisterTestAccount(t, "alice@example.com", "password")
	accessToken, refreshToken := env.IssueExpiredPair(t, "alice@example.com")

	if err := env.DB.Revoke(context.Background(), refreshToken); err != nil {
		t.Fatalf("failed to revoke token: %v", err)
	}

	_, err := env.Service.Refresh(context.Background(), accessToken, refreshToken)
	if !errors.Is(err, service.ErrTokenRevoked) {
		t.Errorf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestRefresh_MismatchedPair(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	env.RegisterTestAccount(t, "alice@example.com", "password")
	accessA, _ := env.IssueExpiredPair(t, "alice@example.com")
	_, refreshB := env.IssueExpiredPair(t, "alice@example.com")

	// access token of pair A with refresh token of pair B
	_, err := env.Service.Refresh(context.Background(), accessA, refreshB)
	if !errors.Is(err, service.ErrTokenMismatch) {
		t.Errorf("expected ErrTokenMismatch, got %v", err)
	}
}

func TestRefresh_StructurallyInvalidAccessToken(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	env.RegisterTestAccount(t, "alice@example.com", "password")
	accessToken, refreshToken := env.IssueExpiredPair(t, "alice@example.com")

	for _, input := range []string{"garbage", accessToken + "tampered"} {
		_, err := env.Service.Refresh(context.Background(), input, refreshToken)
		if !errors.Is(err, service.ErrTokenInvalid) {
			t.Errorf("input %q: expected ErrTokenInvalid, got %v", input, err)
		}
	}

	// failed attempts must not have consumed the refresh token
	record, err := env.DB.Find(context.Background(), refreshToken)
	if err != nil {
		t.Fatalf("refresh record lookup failed: %v", err)
	}
	if record.Used {
		t.Error("failed refresh attempts must not mutate the store")
	}
}

func TestRefresh_ExpiredRefreshRecord(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	env.RegisterTestAccount(t, "alice@example.com", "password")
	account := env.FindTestAccount(t, "alice@example.com")
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
		IssuedAt:  now.Add(-time.Hour),
		ExpiresAt: now.Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("failed to store refresh token: %v", err)
	}

	_, err = env.Service.Refresh(context.Background(), accessToken, refreshToken)
	if !errors.Is(err, service.ErrRefreshExpired) {
		t.Errorf("expected ErrRefreshExpired, got %v", err)
	}
}
