package database

import (
	"context"
	"fmt"

	"git.sr.ht/~jakintosh/stacks/internal/service"
)

func (s *SQLiteStore) BookStore() service.BookStore {
	return s
}

func (s *SQLiteStore) ListBooks(
	ctx context.Context,
) (
	[]service.Book,
	error,
) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, author, publisher, is_avail
		FROM book
		ORDER BY id;`,
	)
	if err != nil {
		return nil, fmt.Errorf("couldn't query books: %v", err)
	}
	defer rows.Close()

	var books []service.Book
	for rows.Next() {
		var book service.Book
		err := rows.Scan(&book.ID, &book.Title, &book.Author, &book.Publisher, &book.Available)
		if err != nil {
			return nil, fmt.Errorf("couldn't scan book: %v", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("couldn't iterate books: %v", err)
	}
	return books, nil
}

func (s *SQLiteStore) UpsertBook(
	ctx context.Context,
	book service.Book,
) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO book (id, title, author, publisher, is_avail)
		VALUES (?1, ?2, ?3, ?4, ?5)
		ON CONFLICT (id) DO UPDATE SET
			title=excluded.title,
			author=excluded.author,
			publisher=excluded.publisher,
			is_avail=excluded.is_avail;`,
		book.ID,
		book.Title,
		book.Author,
		book.Publisher,
		book.Available,
	)
	if err != nil {
		return fmt.Errorf("couldn't upsert book: %v", err)
	}
	return nil
}
