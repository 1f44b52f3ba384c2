package models

import "time"

const (
	BookAvailable = "available"
	BookLent      = "lent"
)

// Book is a catalog entry. Status, LentTo and LentDate are owned by the
// lending lifecycle: status is "lent" exactly when LentTo and LentDate are set.
type Book struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Author         string     `json:"author"`
	OriginalTitle  string     `json:"originalTitle,omitempty"`
	OriginalAuthor string     `json:"originalAuthor,omitempty"`
	Genre          string     `json:"genre,omitempty"`
	ISBN           string     `json:"isbn,omitempty"`
	Description    string     `json:"description,omitempty"`
	CoverURL       string     `json:"coverUrl,omitempty"`
	Tags           string     `json:"tags,omitempty"`
	Status         string     `json:"status"`
	LentTo         string     `json:"lentTo,omitempty"`
	LentDate       *time.Time `json:"lentDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
