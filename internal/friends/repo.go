package friends

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bookshelf/pkg/database"
	"bookshelf/pkg/models"
)

type Repo struct {
	Store *database.Handle
}

func NewRepo(store *database.Handle) *Repo {
	return &Repo{Store: store}
}

const friendColumns = `id, name, email, phone, address, notes, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, f models.Friend) error {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO friends (`+friendColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.Name, nullString(f.Email), nullString(f.Phone), nullString(f.Address),
		nullString(f.Notes), f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert friend: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (*models.Friend, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+friendColumns+` FROM friends WHERE id = ?`, id)
	f, err := scanFriend(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get friend: %w", err)
	}
	return f, nil
}

// List returns friends newest first. q matches name or email.
func (r *Repo) List(ctx context.Context, q string) ([]models.Friend, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return nil, err
	}

	sqlStr := `SELECT ` + friendColumns + ` FROM friends`
	var args []any
	if kw := strings.ToLower(strings.TrimSpace(q)); kw != "" {
		sqlStr += ` WHERE LOWER(name) LIKE ? OR LOWER(COALESCE(email, '')) LIKE ?`
		like := "%" + kw + "%"
		args = append(args, like, like)
	}
	sqlStr += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	defer rows.Close()

	out := make([]models.Friend, 0)
	for rows.Next() {
		f, err := scanFriend(rows)
		if err != nil {
			return nil, fmt.Errorf("scan friend row: %w", err)
		}
		out = append(out, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Update(ctx context.Context, f models.Friend) (bool, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE friends
		SET name = ?, email = ?, phone = ?, address = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, f.Name, nullString(f.Email), nullString(f.Phone), nullString(f.Address),
		nullString(f.Notes), f.UpdatedAt, f.ID)
	if err != nil {
		return false, fmt.Errorf("update friend: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM friends WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete friend: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFriend(s scanner) (*models.Friend, error) {
	var (
		f       models.Friend
		email   sql.NullString
		phone   sql.NullString
		address sql.NullString
		notes   sql.NullString
	)
	if err := s.Scan(&f.ID, &f.Name, &email, &phone, &address, &notes, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Email = email.String
	f.Phone = phone.String
	f.Address = address.String
	f.Notes = notes.String
	return &f, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
