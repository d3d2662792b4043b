package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (a *API) Router() http.Handler {
	r := mux.NewRouter()

	s := r.PathPrefix("/api/").Subrouter()
	s.HandleFunc("/register", a.Register()).Methods("POST")
	s.HandleFunc("/login", a.Login()).Methods("POST")
	s.HandleFunc("/refresh", a.Refresh()).Methods("POST")
	s.HandleFunc("/books", a.Books()).Methods("GET")

	return r
}
