package database_test

import (
	"context"
	"errors"
	"testing"

	"git.sr.ht/~jakintosh/stacks/internal/database"
	"git.sr.ht/~jakintosh/stacks/internal/service"
)

func createTestAccount(t *testing.T, store *database.SQLiteStore, email string, password string) *service.Account {
	t.Helper()
	account, err := store.CreateAccount(context.Background(), service.Registration{
		Email:    email,
		Password: password,
		Name:     "Test Account",
		Mobile:   "555-0100",
	})
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	return account
}

func TestCreateAccount_AndFind(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	created := createTestAccount(t, store, "Alice@Example.com", "password")
	if created.ID == "" {
		t.Fatal("expected a generated account id")
	}
	if created.Email != "alice@example.com" {
		t.Errorf("expected normalized email, got %s", created.Email)
	}

	byEmail, err := store.FindByEmail(context.Background(), "ALICE@example.COM")
	if err != nil {
		t.Fatalf("find by email failed: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("find by email returned wrong account: %s", byEmail.ID)
	}

	byID, err := store.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("find by id failed: %v", err)
	}
	if byID.Email != created.Email {
		t.Errorf("find by id returned wrong account: %s", byID.Email)
	}
}

func TestFindAccount_NotFound(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	if _, err := store.FindByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, service.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := store.FindByID(context.Background(), "no-such-id"); !errors.Is(err, service.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	createTestAccount(t, store, "alice@example.com", "password")

	_, err := store.CreateAccount(context.Background(), service.Registration{
		Email:    "ALICE@example.com",
		Password: "password",
		Name:     "Other Alice",
	})
	if !errors.Is(err, service.ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestCreateAccount_Validation(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	_, err := store.CreateAccount(context.Background(), service.Registration{
		Email:    "not-an-email",
		Password: "abc",
		Name:     " ",
	})

	var validation service.ValidationErrors
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}

	expected := map[string]bool{
		"Email is invalid":                        false,
		"Passwords must be at least 6 characters": false,
		"Name is required":                        false,
	}
	for _, msg := range validation {
		if _, ok := expected[msg]; !ok {
			t.Errorf("unexpected validation message: %q", msg)
			continue
		}
		expected[msg] = true
	}
	for msg, seen := range expected {
		if !seen {
			t.Errorf("missing validation message: %q", msg)
		}
	}
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	account := createTestAccount(t, store, "alice@example.com", "password")

	if err := store.VerifyPassword(context.Background(), account.ID, "password"); err != nil {
		t.Errorf("expected correct password to verify, got %v", err)
	}
	if err := store.VerifyPassword(context.Background(), account.ID, "wrong"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := store.VerifyPassword(context.Background(), "no-such-id", "password"); !errors.Is(err, service.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}
