package stats

import (
	"context"
	"database/sql"
	"fmt"

	"bookshelf/pkg/database"
	"bookshelf/pkg/models"
)

type Repo struct {
	Store *database.Handle
}

func NewRepo(store *database.Handle) *Repo {
	return &Repo{Store: store}
}

// BookStatusCounts returns the number of books per stored status.
func (r *Repo) BookStatusCounts(ctx context.Context) (map[string]int, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM books GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan book count: %w", err)
		}
		out[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Lendings loads the fields the aggregator needs from every lending.
func (r *Repo) Lendings(ctx context.Context) ([]models.Lending, error) {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT status, lend_date, expected_return_date FROM lendings`)
	if err != nil {
		return nil, fmt.Errorf("scan lendings: %w", err)
	}
	defer rows.Close()

	out := make([]models.Lending, 0)
	for rows.Next() {
		var l models.Lending
		var expected sql.NullTime
		if err := rows.Scan(&l.Status, &l.LendDate, &expected); err != nil {
			return nil, fmt.Errorf("scan lending row: %w", err)
		}
		if expected.Valid {
			t := expected.Time
			l.ExpectedReturnDate = &t
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

