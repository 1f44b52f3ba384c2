// Package csvio moves books, friends and lendings between the store and
// CSV files. Timestamps are written as RFC 3339 in UTC.
package csvio

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"bookshelf/internal/books"
	"bookshelf/internal/friends"
	"bookshelf/internal/lending"
)

var (
	BookHeader    = []string{"id", "title", "author", "original_title", "original_author", "genre", "isbn", "description", "cover_url", "tags", "status", "lent_to", "lent_date", "created_at", "updated_at"}
	FriendHeader  = []string{"id", "name", "email", "phone", "address", "notes", "created_at", "updated_at"}
	LendingHeader = []string{"id", "book_id", "book_title", "friend_id", "friend_name", "lend_date", "expected_return_date", "actual_return_date", "status", "condition", "return_condition", "notes"}
)

// ExportBooks writes every book and returns the row count.
func ExportBooks(ctx context.Context, repo *books.Repo, w io.Writer) (int, error) {
	items, err := repo.List(ctx, books.ListQuery{})
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(BookHeader); err != nil {
		return 0, err
	}
	for _, b := range items {
		if err := cw.Write([]string{
			b.ID, b.Title, b.Author, b.OriginalTitle, b.OriginalAuthor, b.Genre, b.ISBN,
			b.Description, b.CoverURL, b.Tags, b.Status, b.LentTo, formatTimePtr(b.LentDate),
			formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
		}); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(items), cw.Error()
}

func ExportFriends(ctx context.Context, repo *friends.Repo, w io.Writer) (int, error) {
	items, err := repo.List(ctx, "")
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(FriendHeader); err != nil {
		return 0, err
	}
	for _, f := range items {
		if err := cw.Write([]string{
			f.ID, f.Name, f.Email, f.Phone, f.Address, f.Notes,
			formatTime(f.CreatedAt), formatTime(f.UpdatedAt),
		}); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(items), cw.Error()
}

// ExportLendings writes lendings with the joined book title and friend
// name. Those columns are empty when the referenced record is gone.
func ExportLendings(ctx context.Context, repo *lending.Repo, w io.Writer) (int, error) {
	items, err := repo.ListViews(ctx, "")
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(LendingHeader); err != nil {
		return 0, err
	}
	for _, v := range items {
		var title, name string
		if v.Book != nil {
			title = v.Book.Title
		}
		if v.Friend != nil {
			name = v.Friend.Name
		}
		if err := cw.Write([]string{
			v.ID, v.BookID, title, v.FriendID, name,
			formatTime(v.LendDate), formatTimePtr(v.ExpectedReturnDate), formatTimePtr(v.ActualReturnDate),
			v.Status, v.Condition, v.ReturnCondition, v.Notes,
		}); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush lendings: %w", err)
	}
	return len(items), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
