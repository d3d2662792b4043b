package api

import (
	"fmt"
	"net/http"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if ok := decodeRequest(&req, w, r); !ok {
			return
		}

		pair, err := a.service.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			// the generic message is deliberate; don't leak which check failed
			logApiErr(r, fmt.Sprintf("login failed: %v", err))
			returnAuthFailure(w, authMessages(err)...)
			return
		}

		returnJson(authSuccess(pair), w)
	}
}
