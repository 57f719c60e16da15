package domain

import "time"

// Attachment stores metadata for an externally hosted file linked to a
// ticket. Binary content never passes through this service; only the URL
// and descriptive metadata are persisted.
type Attachment struct {
	ID        string
	TicketID  string
	Name      string
	SizeBytes int64
	MimeType  string
	URL       string
	CreatedAt time.Time
}
