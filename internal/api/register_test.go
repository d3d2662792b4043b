package api_test

import (
	"net/http"
	"testing"

	"git.sr.ht/~jakintosh/stacks/internal/api"
	"git.sr.ht/~jakintosh/stacks/internal/testutil"
)

func TestRegisterEndpoint_Success(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	var result api.AuthResult
	res := testutil.PostJSON(env.Router, "/api/register",
		`{"email":"a@x.com","password":"P@ss1!","name":"A","mobile":"123"}`,
		&result,
	)
	testutil.ExpectStatus(t, http.StatusOK, res)

	if !result.IsSuccess {
		t.Fatalf("expected success, got errors: %v", result.Errors)
	}
	if result.Token == "" || result.RefreshToken == "" {
		t.Error("expected both tokens in the response")
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors on success, got %v", result.Errors)
	}
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)
	env.RegisterTestAccount(t, "a@x.com", "P@ss1!")

	var result api.AuthResult
	res := testutil.PostJSON(env.Router, "/api/register",
		`{"email":"a@x.com","password":"P@ss1!","name":"A","mobile":"123"}`,
		&result,
	)
	testutil.ExpectStatus(t, http.StatusBadRequest, res)

	if result.IsSuccess {
		t.Fatal("expected failure for duplicate email")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "Email already in use" {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
}

func TestRegisterEndpoint_ValidationErrors(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	var result api.AuthResult
	res := testutil.PostJSON(env.Router, "/api/register",
		`{"email":"not-an-email","password":"abc","name":""}`,
		&result,
	)
	testutil.ExpectStatus(t, http.StatusBadRequest, res)

	if result.IsSuccess {
		t.Fatal("expected failure for invalid registration")
	}
	if len(result.Errors) != 3 {
		t.Errorf("expected 3 validation messages, got %v", result.Errors)
	}
	if result.Token != "" || result.RefreshToken != "" {
		t.Error("expected no tokens on failure")
	}
}

func TestRegisterEndpoint_BadPayload(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	var result api.AuthResult
	res := testutil.PostJSON(env.Router, "/api/register", `{not json`, &result)
	testutil.ExpectStatus(t, http.StatusBadRequest, res)

	if result.IsSuccess {
		t.Fatal("expected failure for malformed body")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "Invalid payload" {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
}
