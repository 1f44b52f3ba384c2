package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"time"

	"bookshelf/internal/csvio"
	"bookshelf/pkg/database"
	"bookshelf/pkg/utils"
)

func main() {
	var (
		booksIn   = flag.String("books", "data/books.csv", "input CSV path for books")
		friendsIn = flag.String("friends", "data/friends.csv", "input CSV path for friends")
	)
	flag.Parse()

	logger := utils.NewLogger(utils.LoadLogConfig(), os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := database.NewHandle(database.DefaultConfig())
	defer store.Close()

	now := time.Now().UTC()
	jobs := []struct {
		name string
		path string
		run  func(io.Reader) (int, error)
	}{
		{"books", *booksIn, func(r io.Reader) (int, error) {
			return csvio.ImportBooks(ctx, store, r, now)
		}},
		{"friends", *friendsIn, func(r io.Reader) (int, error) {
			return csvio.ImportFriends(ctx, store, r, now)
		}},
	}

	for _, job := range jobs {
		f, err := os.Open(job.path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Warn("skipping missing file", "table", job.name, "path", job.path)
				continue
			}
			fail(logger, job.name, err)
		}

		n, err := job.run(f)
		_ = f.Close()
		if err != nil {
			fail(logger, job.name, err)
		}
		logger.Info("imported", "table", job.name, "rows", n, "path", job.path)
	}
}

func fail(logger *slog.Logger, table string, err error) {
	logger.Error("import failed", "table", table, "err", err)
	os.Exit(1)
}
