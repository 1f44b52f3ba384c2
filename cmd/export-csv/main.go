package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"bookshelf/internal/books"
	"bookshelf/internal/csvio"
	"bookshelf/internal/friends"
	"bookshelf/internal/lending"
	"bookshelf/pkg/database"
	"bookshelf/pkg/utils"
)

func main() {
	var (
		booksOut    = flag.String("books", "data/books.csv", "output CSV path for books")
		friendsOut  = flag.String("friends", "data/friends.csv", "output CSV path for friends")
		lendingsOut = flag.String("lendings", "data/lendings.csv", "output CSV path for lendings")
	)
	flag.Parse()

	logger := utils.NewLogger(utils.LoadLogConfig(), os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := database.NewHandle(database.DefaultConfig())
	defer store.Close()

	jobs := []struct {
		name string
		path string
		run  func(io.Writer) (int, error)
	}{
		{"books", *booksOut, func(w io.Writer) (int, error) {
			return csvio.ExportBooks(ctx, books.NewRepo(store), w)
		}},
		{"friends", *friendsOut, func(w io.Writer) (int, error) {
			return csvio.ExportFriends(ctx, friends.NewRepo(store), w)
		}},
		{"lendings", *lendingsOut, func(w io.Writer) (int, error) {
			return csvio.ExportLendings(ctx, lending.NewRepo(store), w)
		}},
	}

	for _, job := range jobs {
		n, err := writeFile(job.path, job.run)
		if err != nil {
			logger.Error("export failed", "table", job.name, "err", err)
			os.Exit(1)
		}
		logger.Info("exported", "table", job.name, "rows", n, "path", job.path)
	}
}

func writeFile(path string, run func(io.Writer) (int, error)) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}

	n, err := run(f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", path, cerr)
	}
	return n, err
}
