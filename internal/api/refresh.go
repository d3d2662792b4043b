package api

import (
	"fmt"
	"net/http"
)

type RefreshRequest struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func (a *API) Refresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefreshRequest
		if ok := decodeRequest(&req, w, r); !ok {
			return
		}

		pair, err := a.service.Refresh(r.Context(), req.Token, req.RefreshToken)
		if err != nil {
			logApiErr(r, fmt.Sprintf("refresh failed: %v", err))
			returnAuthFailure(w, authMessages(err)...)
			return
		}

		returnJson(authSuccess(pair), w)
	}
}
