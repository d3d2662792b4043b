package service

import (
	"context"
	"fmt"
)

func (s *Service) ListBooks(ctx context.Context) ([]Book, error) {
	books, err := s.books.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't list books: %v", ErrInternal, err)
	}
	return books, nil
}
