package feed

import "time"

const (
	LendingCreated  = "lending.created"
	LendingUpdated  = "lending.updated"
	LendingReturned = "lending.returned"
	LendingDeleted  = "lending.deleted"
)

type Event struct {
	Type      string    `json:"type"`
	LendingID string    `json:"lendingId"`
	BookID    string    `json:"bookId"`
	FriendID  string    `json:"friendId"`
	Status    string    `json:"status,omitempty"`
	At        time.Time `json:"at"`
}
