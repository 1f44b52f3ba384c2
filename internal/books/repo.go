package books

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bookshelf/pkg/database"
	"bookshelf/pkg/models"
)

type Repo struct {
	Store *database.Handle
}

type ListQuery struct {
	Q      string // keyword search in title/author/isbn/tags
	Status string
	Genre  string
}

func NewRepo(store *database.Handle) *Repo {
	return &Repo{Store: store}
}

const bookColumns = `
	id, title, author, original_title, original_author, genre, isbn,
	description, cover_url, tags, status, lent_to, lent_date, created_at, updated_at
`

func (r *Repo) Create(ctx context.Context, b models.Book) error {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.Title, b.Author, nullString(b.OriginalTitle), nullString(b.OriginalAuthor),
		nullString(b.Genre), nullString(b.ISBN), nullString(b.Description), nullString(b.CoverURL),
		nullString(b.Tags), b.Status, nullString(b.LentTo), nullTime(b.LentDate), b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (*models.Book, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Book, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return nil, err
	}

	sqlStr, args := buildListSQL(q)
	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := make([]models.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// UpdateDetails rewrites the catalog fields. Status, lent_to and lent_date
// are left alone; only the lending lifecycle moves them.
func (r *Repo) UpdateDetails(ctx context.Context, b models.Book) (bool, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE books SET
			title = ?, author = ?, original_title = ?, original_author = ?, genre = ?,
			isbn = ?, description = ?, cover_url = ?, tags = ?, updated_at = ?
		WHERE id = ?
	`, b.Title, b.Author, nullString(b.OriginalTitle), nullString(b.OriginalAuthor), nullString(b.Genre),
		nullString(b.ISBN), nullString(b.Description), nullString(b.CoverURL), nullString(b.Tags),
		b.UpdatedAt, b.ID)
	if err != nil {
		return false, fmt.Errorf("update book: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MarkLent sets status, lent_to and lent_date together.
func (r *Repo) MarkLent(ctx context.Context, id, lentTo string, at time.Time) (bool, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE books
		SET status = 'lent', lent_to = ?, lent_date = ?, updated_at = ?
		WHERE id = ?
	`, lentTo, at, at, id)
	if err != nil {
		return false, fmt.Errorf("mark book lent: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MarkAvailable clears status, lent_to and lent_date together. A missing
// book is reported through the bool, not as an error.
func (r *Repo) MarkAvailable(ctx context.Context, id string, at time.Time) (bool, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE books
		SET status = 'available', lent_to = NULL, lent_date = NULL, updated_at = ?
		WHERE id = ?
	`, at, id)
	if err != nil {
		return false, fmt.Errorf("mark book available: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete book: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(s scanner) (*models.Book, error) {
	var (
		b              models.Book
		originalTitle  sql.NullString
		originalAuthor sql.NullString
		genre          sql.NullString
		isbn           sql.NullString
		description    sql.NullString
		coverURL       sql.NullString
		tags           sql.NullString
		lentTo         sql.NullString
		lentDate       sql.NullTime
	)

	if err := s.Scan(
		&b.ID, &b.Title, &b.Author, &originalTitle, &originalAuthor, &genre, &isbn,
		&description, &coverURL, &tags, &b.Status, &lentTo, &lentDate, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	b.OriginalTitle = originalTitle.String
	b.OriginalAuthor = originalAuthor.String
	b.Genre = genre.String
	b.ISBN = isbn.String
	b.Description = description.String
	b.CoverURL = coverURL.String
	b.Tags = tags.String
	b.LentTo = lentTo.String
	if lentDate.Valid {
		t := lentDate.Time
		b.LentDate = &t
	}
	return &b, nil
}

func buildListSQL(q ListQuery) (string, []any) {
	var where []string
	var args []any

	if kw := strings.ToLower(strings.TrimSpace(q.Q)); kw != "" {
		where = append(where, `(LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(COALESCE(isbn, '')) LIKE ? OR LOWER(COALESCE(tags, '')) LIKE ?)`)
		like := "%" + kw + "%"
		args = append(args, like, like, like, like)
	}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}
	if g := strings.ToLower(strings.TrimSpace(q.Genre)); g != "" {
		where = append(where, "LOWER(COALESCE(genre, '')) = ?")
		args = append(args, g)
	}

	sqlStr := `SELECT ` + bookColumns + ` FROM books`
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}
	sqlStr += " ORDER BY created_at DESC, rowid DESC"
	return sqlStr, args
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
