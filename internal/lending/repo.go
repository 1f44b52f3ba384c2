package lending

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bookshelf/pkg/database"
	"bookshelf/pkg/models"
)

type Repo struct {
	Store *database.Handle
}

func NewRepo(store *database.Handle) *Repo {
	return &Repo{Store: store}
}

const lendingColumns = `
	l.id, l.book_id, l.friend_id, l.lend_date, l.expected_return_date, l.actual_return_date,
	l.status, l.lend_condition, l.return_condition, l.notes, l.created_at, l.updated_at
`

// viewSelect joins the book and friend summaries. LEFT JOIN keeps lendings
// whose book or friend has since been deleted.
const viewSelect = `
	SELECT ` + lendingColumns + `,
		b.id, b.title, b.author,
		f.id, f.name, f.email
	FROM lendings l
	LEFT JOIN books b ON b.id = l.book_id
	LEFT JOIN friends f ON f.id = l.friend_id
`

func (r *Repo) Insert(ctx context.Context, l models.Lending) error {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO lendings (
			id, book_id, friend_id, lend_date, expected_return_date, actual_return_date,
			status, lend_condition, return_condition, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.BookID, l.FriendID, l.LendDate, nullTime(l.ExpectedReturnDate), nullTime(l.ActualReturnDate),
		l.Status, l.Condition, nullString(l.ReturnCondition), nullString(l.Notes), l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert lending: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (*models.Lending, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+lendingColumns+` FROM lendings l WHERE l.id = ?`, id)
	l, err := scanLending(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get lending: %w", err)
	}
	return l, nil
}

func (r *Repo) GetView(ctx context.Context, id string) (*models.LendingView, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, viewSelect+` WHERE l.id = ?`, id)
	v, err := scanView(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get lending view: %w", err)
	}
	return v, nil
}

// ListViews returns lendings newest first, optionally narrowed to one
// stored status.
func (r *Repo) ListViews(ctx context.Context, status string) ([]models.LendingView, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return nil, err
	}

	sqlStr := viewSelect
	var args []any
	if status != "" {
		sqlStr += ` WHERE l.status = ?`
		args = append(args, status)
	}
	sqlStr += ` ORDER BY l.created_at DESC, l.rowid DESC`

	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list lendings: %w", err)
	}
	defer rows.Close()

	out := make([]models.LendingView, 0)
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lending row: %w", err)
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// ActiveForBook reports whether any active lending references bookID.
func (r *Repo) ActiveForBook(ctx context.Context, bookID string) (bool, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return false, err
	}

	var exists bool
	err = db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM lendings WHERE book_id = ? AND status = 'active')
	`, bookID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("active lending for book: %w", err)
	}
	return exists, nil
}

func (r *Repo) Update(ctx context.Context, l models.Lending) (bool, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE lendings SET
			expected_return_date = ?, actual_return_date = ?, status = ?,
			return_condition = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, nullTime(l.ExpectedReturnDate), nullTime(l.ActualReturnDate), l.Status,
		nullString(l.ReturnCondition), nullString(l.Notes), l.UpdatedAt, l.ID)
	if err != nil {
		return false, fmt.Errorf("update lending: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM lendings WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete lending: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

type lendingNulls struct {
	expected        sql.NullTime
	actual          sql.NullTime
	returnCondition sql.NullString
	notes           sql.NullString
}

func (n lendingNulls) fill(l *models.Lending) {
	if n.expected.Valid {
		t := n.expected.Time
		l.ExpectedReturnDate = &t
	}
	if n.actual.Valid {
		t := n.actual.Time
		l.ActualReturnDate = &t
	}
	l.ReturnCondition = n.returnCondition.String
	l.Notes = n.notes.String
}

func scanLending(s scanner) (*models.Lending, error) {
	var (
		l models.Lending
		n lendingNulls
	)
	if err := s.Scan(
		&l.ID, &l.BookID, &l.FriendID, &l.LendDate, &n.expected, &n.actual,
		&l.Status, &l.Condition, &n.returnCondition, &n.notes, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	n.fill(&l)
	return &l, nil
}

func scanView(s scanner) (*models.LendingView, error) {
	var (
		v           models.LendingView
		n           lendingNulls
		bookID      sql.NullString
		bookTitle   sql.NullString
		bookAuthor  sql.NullString
		friendID    sql.NullString
		friendName  sql.NullString
		friendEmail sql.NullString
	)
	l := &v.Lending
	if err := s.Scan(
		&l.ID, &l.BookID, &l.FriendID, &l.LendDate, &n.expected, &n.actual,
		&l.Status, &l.Condition, &n.returnCondition, &n.notes, &l.CreatedAt, &l.UpdatedAt,
		&bookID, &bookTitle, &bookAuthor,
		&friendID, &friendName, &friendEmail,
	); err != nil {
		return nil, err
	}
	n.fill(l)

	if bookID.Valid {
		v.Book = &models.BookRef{ID: bookID.String, Title: bookTitle.String, Author: bookAuthor.String}
	}
	if friendID.Valid {
		v.Friend = &models.FriendRef{ID: friendID.String, Name: friendName.String, Email: friendEmail.String}
	}
	return &v, nil
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
