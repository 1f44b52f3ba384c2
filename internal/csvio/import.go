package csvio

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookshelf/pkg/database"
	"bookshelf/pkg/models"
)

// ImportBooks upserts books by id. New rows land as available; an existing
// book keeps its status, lent_to and lent_date. Rows missing a title or
// author are skipped. It returns the number of rows written.
func ImportBooks(ctx context.Context, store *database.Handle, r io.Reader, now time.Time) (int, error) {
	db, err := store.Conn(ctx)
	if err != nil {
		return 0, err
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := readHeader(cr)
	if err != nil {
		return 0, err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO books (
			id, title, author, original_title, original_author, genre, isbn,
			description, cover_url, tags, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			original_title = excluded.original_title,
			original_author = excluded.original_author,
			genre = excluded.genre,
			isbn = excluded.isbn,
			description = excluded.description,
			cover_url = excluded.cover_url,
			tags = excluded.tags,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}

		title := valueAt(header, row, "title")
		author := valueAt(header, row, "author")
		if title == "" || author == "" {
			continue
		}
		id, err := rowID(valueAt(header, row, "id"))
		if err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		created, err := parseTime(valueAt(header, row, "created_at"), now)
		if err != nil {
			return n, fmt.Errorf("line %d: parse created_at: %w", line, err)
		}

		if _, err := stmt.ExecContext(ctx,
			id, title, author,
			nullString(valueAt(header, row, "original_title")),
			nullString(valueAt(header, row, "original_author")),
			nullString(valueAt(header, row, "genre")),
			nullString(valueAt(header, row, "isbn")),
			nullString(valueAt(header, row, "description")),
			nullString(valueAt(header, row, "cover_url")),
			nullString(valueAt(header, row, "tags")),
			models.BookAvailable, created, now,
		); err != nil {
			return n, fmt.Errorf("line %d: upsert book: %w", line, err)
		}
		n++
	}
	return n, nil
}

// ImportFriends upserts friends by id, skipping rows without a name.
func ImportFriends(ctx context.Context, store *database.Handle, r io.Reader, now time.Time) (int, error) {
	db, err := store.Conn(ctx)
	if err != nil {
		return 0, err
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := readHeader(cr)
	if err != nil {
		return 0, err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO friends (id, name, email, phone, address, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			address = excluded.address,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}

		name := valueAt(header, row, "name")
		if name == "" {
			continue
		}
		id, err := rowID(valueAt(header, row, "id"))
		if err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		created, err := parseTime(valueAt(header, row, "created_at"), now)
		if err != nil {
			return n, fmt.Errorf("line %d: parse created_at: %w", line, err)
		}

		if _, err := stmt.ExecContext(ctx,
			id, name,
			nullString(valueAt(header, row, "email")),
			nullString(valueAt(header, row, "phone")),
			nullString(valueAt(header, row, "address")),
			nullString(valueAt(header, row, "notes")),
			created, now,
		); err != nil {
			return n, fmt.Errorf("line %d: upsert friend: %w", line, err)
		}
		n++
	}
	return n, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// rowID keeps a valid id and mints one when the column is empty.
func rowID(raw string) (string, error) {
	if raw == "" {
		return uuid.NewString(), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid id %q", raw)
	}
	return id.String(), nil
}

func parseTime(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func nullString(raw string) sql.NullString {
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}
