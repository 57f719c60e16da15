package dto

import (
	"time"

	"github.com/suportehub/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload. The client supplies the friendly ticket ID.
type CreateTicketRequest struct {
	ID                string                 `json:"id"`
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	Priority          *domain.TicketPriority `json:"priority"`
	RelatedSystem     *string                `json:"relatedSystem"`
	AssignmentGroupID *string                `json:"assignmentGroupId"`
	Tags              []string               `json:"tags"`
}

// UpdateTicketRequest payload. An empty-string assignmentGroupId clears the
// group.
type UpdateTicketRequest struct {
	Title             *string                `json:"title"`
	Description       *string                `json:"description"`
	Priority          *domain.TicketPriority `json:"priority"`
	RelatedSystem     *string                `json:"relatedSystem"`
	AssignmentGroupID *string                `json:"assignmentGroupId"`
	AssignedToID      *string                `json:"assignedToId"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// AddMessageRequest payload.
type AddMessageRequest struct {
	Content     string `json:"content"`
	AuthorName  string `json:"authorName"`
	AuthorEmail string `json:"authorEmail"`
}

// AttachmentRequest describes metadata for one externally hosted file.
type AttachmentRequest struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
	URL      string `json:"url"`
}

// TicketResponse mirrors the persisted ticket.
type TicketResponse struct {
	ID                string                 `json:"id"`
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	Status            domain.TicketStatus    `json:"status"`
	Priority          *domain.TicketPriority `json:"priority,omitempty"`
	RelatedSystem     *string                `json:"relatedSystem,omitempty"`
	AssignmentGroupID *string                `json:"assignmentGroupId,omitempty"`
	AuthorID          string                 `json:"authorId"`
	AssignedToID      *string                `json:"assignedToId,omitempty"`
	CompletedByID     *string                `json:"completedById,omitempty"`
	Tags              []string               `json:"tags"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

// TicketDetailResponse adds the thread and attachments.
type TicketDetailResponse struct {
	TicketResponse
	Messages    []MessageResponse    `json:"messages"`
	Attachments []AttachmentResponse `json:"attachments"`
}

// MessageResponse represents a thread message.
type MessageResponse struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticketId"`
	AuthorID    *string   `json:"authorId,omitempty"`
	AuthorName  string    `json:"authorName"`
	AuthorEmail string    `json:"authorEmail"`
	Content     string    `json:"content"`
	IsAgent     bool      `json:"isAgent"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticketId"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mimeType"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}
