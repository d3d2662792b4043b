package api

import (
	"fmt"
	"net/http"
)

type BookResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	IsAvail   bool   `json:"isAvail"`
}

func (a *API) Books() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		books, err := a.service.ListBooks(r.Context())
		if err != nil {
			logApiErr(r, fmt.Sprintf("couldn't list books: %v", err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		response := make([]BookResponse, 0, len(books))
		for _, book := range books {
			response = append(response, BookResponse{
				ID:        book.ID,
				Title:     book.Title,
				Author:    book.Author,
				Publisher: book.Publisher,
				IsAvail:   book.Available,
			})
		}
		returnJson(response, w)
	}
}
