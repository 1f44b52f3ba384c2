package models

import "time"

const (
	LendingActive   = "active"
	LendingReturned = "returned"

	DefaultCondition = "good"
)

type Lending struct {
	ID                 string     `json:"id"`
	BookID             string     `json:"bookId"`
	FriendID           string     `json:"friendId"`
	LendDate           time.Time  `json:"lendDate"`
	ExpectedReturnDate *time.Time `json:"expectedReturnDate,omitempty"`
	ActualReturnDate   *time.Time `json:"actualReturnDate,omitempty"`
	Status             string     `json:"status"`
	Condition          string     `json:"condition,omitempty"`
	ReturnCondition    string     `json:"returnCondition,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// IsOverdue reports whether the lending is still out past its expected
// return date. Overdue is never stored.
func (l Lending) IsOverdue(now time.Time) bool {
	return l.Status == LendingActive &&
		l.ExpectedReturnDate != nil &&
		l.ExpectedReturnDate.Before(now)
}

type BookRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

type FriendRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// LendingView is a Lending with its book and friend joined in place of the
// raw ids. A side whose record was deleted serializes as null.
type LendingView struct {
	Lending
	Book    *BookRef   `json:"bookId"`
	Friend  *FriendRef `json:"friendId"`
	Overdue bool       `json:"overdue"`
}
