// Package seed keeps the book catalog in sync with a directory of JSON
// seed files. Each file holds a list of books; edits to the directory are
// picked up at runtime and upserted into the store.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~jakintosh/stacks/internal/service"
)

type bookEntry struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	IsAvail   *bool  `json:"isAvail"`
}

type Loader struct {
	dir   string
	books service.BookStore
}

func NewLoader(dir string, books service.BookStore) *Loader {
	return &Loader{dir: dir, books: books}
}

// Start performs an initial load and then watches the directory for
// changes. The watcher runs for the life of the process.
func (l *Loader) Start() error {
	if err := l.Load(); err != nil {
		return err
	}
	return watchDir(l.dir, func() {
		if err := l.Load(); err != nil {
			log.Printf("seed: reload failed: %v\n", err)
		}
	})
}

// Load reads every seed file in the directory and upserts its books. A
// file that fails to parse is skipped with a log line; it doesn't poison
// the rest of the directory.
func (l *Loader) Load() error {
	files, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("couldn't read seed dir '%s': %v", l.dir, err)
	}

	loaded := 0
	for _, file := range files {
		if !file.Type().IsRegular() {
			continue
		}
		name := file.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}

		count, err := l.loadFile(filepath.Join(l.dir, name))
		if err != nil {
			log.Printf("seed: skipping '%s': %v\n", name, err)
			continue
		}
		loaded += count
	}

	log.Printf("seed: loaded %d books from %s\n", loaded, l.dir)
	return nil
}

func (l *Loader) loadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("couldn't read file: %v", err)
	}

	var entries []bookEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("not a valid book list: %v", err)
	}

	for _, entry := range entries {
		available := true
		if entry.IsAvail != nil {
			available = *entry.IsAvail
		}
		book := service.Book{
			ID:        entry.ID,
			Title:     entry.Title,
			Author:    entry.Author,
			Publisher: entry.Publisher,
			Available: available,
		}
		if err := l.books.UpsertBook(context.Background(), book); err != nil {
			return 0, fmt.Errorf("couldn't store book %d: %v", entry.ID, err)
		}
	}
	return len(entries), nil
}
