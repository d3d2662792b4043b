package api_test

import (
	"net/http"
	"testing"

	"git.sr.ht/~jakintosh/stacks/internal/api"
	"git.sr.ht/~jakintosh/stacks/internal/testutil"
)

func TestLoginEndpoint_Success(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)
	env.RegisterTestAccount(t, "a@x.com", "P@ss1!")

	var result api.AuthResult
	res := testutil.PostJSON(env.Router, "/api/login",
		`{"email":"a@x.com","password":"P@ss1!"}`,
		&result,
	)
	testutil.ExpectStatus(t, http.StatusOK, res)

	if !result.IsSuccess {
		t.Fatalf("expected success, got errors: %v", result.Errors)
	}
	if result.Token == "" || result.RefreshToken == "" {
		t.Error("expected both tokens in the response")
	}
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)
	env.RegisterTestAccount(t, "a@x.com", "P@ss1!")

	var result api.AuthResult
	res := testutil.PostJSON(env.Router, "/api/login",
		`{"email":"a@x.com","password":"wrong-password"}`,
		&result,
	)
	testutil.ExpectStatus(t, http.StatusBadRequest, res)

	if result.IsSuccess {
		t.Fatal("expected failure for wrong password")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "Invalid Login request" {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
}

// An unknown email returns the same response as a wrong password, so
// the endpoint can't be used to probe which addresses have accounts.
func TestLoginEndpoint_UnknownEmail(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	var result api.AuthResult
	res := testutil.PostJSON(env.Router, "/api/login",
		`{"email":"nobody@x.com","password":"P@ss1!"}`,
		&result,
	)
	testutil.ExpectStatus(t, http.StatusBadRequest, res)

	if result.IsSuccess {
		t.Fatal("expected failure for unknown email")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "Invalid Login request" {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
}
