package api

import (
	"fmt"
	"net/http"

	"git.sr.ht/~jakintosh/stacks/internal/service"
)

type RegistrationRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
}

func (a *API) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegistrationRequest
		if ok := decodeRequest(&req, w, r); !ok {
			return
		}

		pair, err := a.service.Register(r.Context(), service.Registration{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Mobile:   req.Mobile,
		})
		if err != nil {
			logApiErr(r, fmt.Sprintf("registration failed: %v", err))
			returnAuthFailure(w, authMessages(err)...)
			return
		}

		returnJson(authSuccess(pair), w)
	}
}
