package domain

import "time"

// TicketMessage captures a single entry in a ticket conversation thread.
// Messages are append-only; they are never edited or deleted individually,
// only cascaded away when their ticket is removed.
type TicketMessage struct {
	ID          string
	TicketID    string
	AuthorID    *string
	AuthorName  string
	AuthorEmail string
	Content     string
	IsAgent     bool
	CreatedAt   time.Time
}
