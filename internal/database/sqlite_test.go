package database_test

import (
	"testing"

	"git.sr.ht/~jakintosh/stacks/internal/database"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) *database.SQLiteStore {
	t.Helper()
	store := database.NewSQLiteStore(":memory:", database.PasswordModeTesting)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestNewSQLiteStore_InitAndClose(t *testing.T) {
	t.Parallel()

	store := database.NewSQLiteStore(":memory:", database.PasswordModeTesting)
	if err := store.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
}

func TestPasswordMode_TestingCost(t *testing.T) {
	t.Parallel()

	if cost := database.PasswordModeTesting.Cost(); cost != bcrypt.MinCost {
		t.Errorf("expected MinCost under go test, got %d", cost)
	}
	if cost := database.PasswordModeProduction.Cost(); cost != bcrypt.DefaultCost {
		t.Errorf("expected DefaultCost, got %d", cost)
	}
}
