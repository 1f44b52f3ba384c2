// Package lending owns the lend/return lifecycle. It is the only writer of
// a book's status, lentTo and lentDate.
//
// The book write and the lending write are two separate statements with no
// transaction around them. A failure between them leaves the first write
// applied, and two concurrent lends of one book can both pass the
// availability check.
package lending

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookshelf/internal/apperr"
	"bookshelf/internal/feed"
	"bookshelf/pkg/models"
)

type BookStore interface {
	Get(ctx context.Context, id string) (*models.Book, error)
	MarkLent(ctx context.Context, id, lentTo string, at time.Time) (bool, error)
	MarkAvailable(ctx context.Context, id string, at time.Time) (bool, error)
}

type FriendStore interface {
	Get(ctx context.Context, id string) (*models.Friend, error)
}

type Publisher interface {
	Publish(ev feed.Event)
}

type Service struct {
	Lendings *Repo
	Books    BookStore
	Friends  FriendStore
	Feed     Publisher
	Now      func() time.Time
}

func NewService(lendings *Repo, books BookStore, friends FriendStore, pub Publisher) *Service {
	return &Service{
		Lendings: lendings,
		Books:    books,
		Friends:  friends,
		Feed:     pub,
		Now:      time.Now,
	}
}

type CreateInput struct {
	BookID             string
	FriendID           string
	ExpectedReturnDate *time.Time
	Notes              string
	Condition          string
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	ExpectedReturnDate *time.Time
	ActualReturnDate   *time.Time
	Status             *string
	ReturnCondition    *string
	Notes              *string
}

// Create lends a book: the book flips to lent first, then the active
// lending is inserted. There is no rollback of the book if the insert fails.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.LendingView, error) {
	book, err := s.Books.Get(ctx, in.BookID)
	if err != nil {
		return nil, apperr.Store("Failed to create lending record", err)
	}
	if book == nil {
		return nil, apperr.NotFound("Book not found")
	}

	friend, err := s.Friends.Get(ctx, in.FriendID)
	if err != nil {
		return nil, apperr.Store("Failed to create lending record", err)
	}
	if friend == nil {
		return nil, apperr.NotFound("Friend not found")
	}

	if book.Status == models.BookLent {
		return nil, apperr.Conflict("Book is already lent")
	}
	active, err := s.Lendings.ActiveForBook(ctx, book.ID)
	if err != nil {
		return nil, apperr.Store("Failed to create lending record", err)
	}
	if active {
		return nil, apperr.Conflict("Book already has an active lending")
	}

	now := s.now()
	if _, err := s.Books.MarkLent(ctx, book.ID, friend.ID, now); err != nil {
		return nil, apperr.Store("Failed to create lending record", err)
	}

	condition := strings.TrimSpace(in.Condition)
	if condition == "" {
		condition = models.DefaultCondition
	}
	l := models.Lending{
		ID:                 uuid.NewString(),
		BookID:             book.ID,
		FriendID:           friend.ID,
		LendDate:           now,
		ExpectedReturnDate: utcPtr(in.ExpectedReturnDate),
		Status:             models.LendingActive,
		Condition:          condition,
		Notes:              strings.TrimSpace(in.Notes),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.Lendings.Insert(ctx, l); err != nil {
		slog.ErrorContext(ctx, "lending insert failed after book was marked lent",
			"book_id", book.ID, "err", err)
		return nil, apperr.Store("Failed to create lending record", err)
	}

	s.publish(feed.LendingCreated, l, now)
	return s.view(ctx, l.ID, "Failed to create lending record")
}

// Update applies a partial update. Moving an active lending to returned
// stamps actualReturnDate when the caller did not, then resets the book as
// a second write once the lending write has succeeded.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.LendingView, error) {
	l, err := s.Lendings.Get(ctx, id)
	if err != nil {
		return nil, apperr.Store("Failed to update lending record", err)
	}
	if l == nil {
		return nil, apperr.NotFound("Lending record not found")
	}

	now := s.now()
	wasActive := l.Status == models.LendingActive

	if in.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*in.Status))
		switch status {
		case models.LendingActive:
			if !wasActive {
				return nil, apperr.Validation("A returned lending cannot be reactivated")
			}
		case models.LendingReturned:
		default:
			return nil, apperr.Validation("status must be one of: active, returned")
		}
		l.Status = status
	}
	if in.ExpectedReturnDate != nil {
		l.ExpectedReturnDate = utcPtr(in.ExpectedReturnDate)
	}
	if in.Notes != nil {
		l.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.ActualReturnDate != nil {
		l.ActualReturnDate = utcPtr(in.ActualReturnDate)
	}
	if in.ReturnCondition != nil {
		l.ReturnCondition = strings.TrimSpace(*in.ReturnCondition)
	}

	returning := wasActive && l.Status == models.LendingReturned
	if returning && l.ActualReturnDate == nil {
		t := now
		l.ActualReturnDate = &t
	}
	if l.Status == models.LendingActive && (l.ActualReturnDate != nil || l.ReturnCondition != "") {
		return nil, apperr.Validation("actualReturnDate and returnCondition require status returned")
	}
	l.UpdatedAt = now

	ok, err := s.Lendings.Update(ctx, *l)
	if err != nil {
		return nil, apperr.Store("Failed to update lending record", err)
	}
	if !ok {
		return nil, apperr.NotFound("Lending record not found")
	}

	evType := feed.LendingUpdated
	if returning {
		if _, err := s.Books.MarkAvailable(ctx, l.BookID, now); err != nil {
			return nil, apperr.Store("Failed to update book status", err)
		}
		evType = feed.LendingReturned
	}

	s.publish(evType, *l, now)
	return s.view(ctx, l.ID, "Failed to update lending record")
}

// Delete resets the referenced book to available whatever the lending's
// status, then removes the lending.
func (s *Service) Delete(ctx context.Context, id string) error {
	l, err := s.Lendings.Get(ctx, id)
	if err != nil {
		return apperr.Store("Failed to delete lending record", err)
	}
	if l == nil {
		return apperr.NotFound("Lending record not found")
	}

	now := s.now()
	if _, err := s.Books.MarkAvailable(ctx, l.BookID, now); err != nil {
		return apperr.Store("Failed to delete lending record", err)
	}

	ok, err := s.Lendings.Delete(ctx, id)
	if err != nil {
		return apperr.Store("Failed to delete lending record", err)
	}
	if !ok {
		return apperr.NotFound("Lending record not found")
	}

	s.publish(feed.LendingDeleted, *l, now)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.LendingView, error) {
	return s.view(ctx, id, "Failed to fetch lending record")
}

// Filter values accepted by List. "overdue" is derived, the rest are stored.
const (
	FilterAll      = ""
	FilterActive   = models.LendingActive
	FilterReturned = models.LendingReturned
	FilterOverdue  = "overdue"
)

func (s *Service) List(ctx context.Context, filter string) ([]models.LendingView, error) {
	stored := filter
	switch filter {
	case FilterAll, FilterActive, FilterReturned:
	case FilterOverdue:
		stored = FilterActive
	default:
		return nil, apperr.Validation("status must be one of: active, returned, overdue")
	}

	views, err := s.Lendings.ListViews(ctx, stored)
	if err != nil {
		return nil, apperr.Store("Failed to fetch lending records", err)
	}

	now := s.now()
	out := views[:0]
	for _, v := range views {
		v.Overdue = v.IsOverdue(now)
		if filter == FilterOverdue && !v.Overdue {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) view(ctx context.Context, id, failMsg string) (*models.LendingView, error) {
	v, err := s.Lendings.GetView(ctx, id)
	if err != nil {
		return nil, apperr.Store(failMsg, err)
	}
	if v == nil {
		return nil, apperr.NotFound("Lending record not found")
	}
	v.Overdue = v.IsOverdue(s.now())
	return v, nil
}

func (s *Service) publish(typ string, l models.Lending, at time.Time) {
	if s.Feed == nil {
		return
	}
	s.Feed.Publish(feed.Event{
		Type:      typ,
		LendingID: l.ID,
		BookID:    l.BookID,
		FriendID:  l.FriendID,
		Status:    l.Status,
		At:        at,
	})
}

func (s *Service) now() time.Time {
	return s.Now().UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
