// Package api exposes the auth protocol and the catalog over HTTP. Every
// auth failure is recovered here and mapped to a client-error response
// carrying a human-readable message list; nothing propagates as a fault.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"git.sr.ht/~jakintosh/stacks/internal/service"
)

type API struct {
	service *service.Service
}

func New(svc *service.Service) *API {
	return &API{service: svc}
}

// AuthResult is the wire shape shared by all three auth endpoints.
type AuthResult struct {
	Token        string   `json:"token,omitempty"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	IsSuccess    bool     `json:"isSuccess"`
	Errors       []string `json:"errors,omitempty"`
}

func authSuccess(pair *service.TokenPair) *AuthResult {
	return &AuthResult{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		IsSuccess:    true,
	}
}

// authMessages maps the service's error taxonomy onto the response
// message list. Login failures collapse to one generic message regardless
// of which check failed; refresh failures keep their distinct reasons.
func authMessages(err error) []string {
	var validation service.ValidationErrors
	switch {
	case errors.As(err, &validation):
		return validation
	case errors.Is(err, service.ErrEmailExists):
		return []string{"Email already in use"}
	case errors.Is(err, service.ErrInvalidCredentials):
		return []string{"Invalid Login request"}
	case errors.Is(err, service.ErrTokenInvalid):
		return []string{"Invalid tokens"}
	case errors.Is(err, service.ErrTokenNotExpired):
		return []string{"Token has not yet expired"}
	case errors.Is(err, service.ErrTokenNotFound):
		return []string{"Token does not exist"}
	case errors.Is(err, service.ErrTokenUsed):
		return []string{"Token has been used"}
	case errors.Is(err, service.ErrTokenRevoked):
		return []string{"Token has been revoked"}
	case errors.Is(err, service.ErrTokenMismatch):
		return []string{"Token does not match"}
	case errors.Is(err, service.ErrRefreshExpired):
		return []string{"Token has expired please re-login"}
	default:
		return []string{"Something went wrong"}
	}
}

func decodeRequest[T any](req *T, w http.ResponseWriter, r *http.Request) bool {
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logApiErr(r, "bad json request")
		returnAuthFailure(w, "Invalid payload")
		return false
	}
	return true
}

func returnJson(data any, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
}

func returnAuthFailure(w http.ResponseWriter, messages ...string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(&AuthResult{
		IsSuccess: false,
		Errors:    messages,
	})
}

func logApiErr(r *http.Request, msg string) {
	log.Printf("%s %s: %s\n", r.Method, r.RequestURI, msg)
}
