package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/suportehub/helpdesk-service/internal/domain"
	"github.com/suportehub/helpdesk-service/internal/events"
	"github.com/suportehub/helpdesk-service/internal/repository"
	apperrors "github.com/suportehub/helpdesk-service/pkg/util"
)

// TicketService owns the ticket lifecycle: creation with group routing,
// assignment, status changes, reopening, the message thread and deletion.
type TicketService struct {
	tickets     repository.TicketRepository
	messages    repository.TicketMessageRepository
	attachments repository.AttachmentRepository
	groups      repository.AssignmentGroupRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	MessageRepo    repository.TicketMessageRepository
	AttachmentRepo repository.AttachmentRepository
	GroupRepo      repository.AssignmentGroupRepository
	UserRepo       repository.UserRepository
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	ID                string
	Title             string
	Description       string
	Priority          *domain.TicketPriority
	RelatedSystem     *string
	AssignmentGroupID *string
	Tags              []string
}

// TicketUpdateInput describes a partial ticket update. A non-nil
// AssignmentGroupID pointing at an empty string clears the group.
type TicketUpdateInput struct {
	Title             *string
	Description       *string
	Priority          *domain.TicketPriority
	RelatedSystem     *string
	AssignmentGroupID *string
	AssignedToID      *string
}

// MessageInput describes a thread message payload.
type MessageInput struct {
	Content     string
	AuthorName  string
	AuthorEmail string
}

// AttachmentInput defines attachment metadata.
type AttachmentInput struct {
	Name      string
	SizeBytes int64
	MimeType  string
	URL       string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		messages:    deps.MessageRepo,
		attachments: deps.AttachmentRepo,
		groups:      deps.GroupRepo,
		users:       deps.UserRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// Create registers a new ticket. A duplicate friendly ID is rejected and the
// existing record left untouched. When no explicit group is supplied the
// ticket is routed by its related system category, falling back to the
// catch-all group.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, apperrors.NewValidationError("id required", nil)
	}

	if _, err := s.tickets.GetByID(ctx, id); err == nil {
		return nil, apperrors.NewDuplicateKey("ticket id already exists", map[string]any{"ticket_id": id})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	groupID := input.AssignmentGroupID
	if groupID == nil {
		resolved, err := s.resolveGroup(ctx, input.RelatedSystem)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		groupID = resolved
	}

	ticket := &domain.Ticket{
		ID:                id,
		Title:             strings.TrimSpace(input.Title),
		Description:       strings.TrimSpace(input.Description),
		Status:            domain.TicketStatusOpen,
		Priority:          input.Priority,
		RelatedSystem:     input.RelatedSystem,
		AssignmentGroupID: groupID,
		AuthorID:          actor.ID,
		Tags:              input.Tags,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Title:             ticket.Title,
			Priority:          ticket.Priority,
			RelatedSystem:     ticket.RelatedSystem,
			AssignmentGroupID: ticket.AssignmentGroupID,
		},
	})
	return ticket, nil
}

// List returns tickets visible to the actor: agents see every ticket,
// requesters only their own.
func (s *TicketService) List(ctx context.Context, actor *domain.User, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if !actor.IsAgent() {
		filter.AuthorID = &actor.ID
	}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Get fetches a ticket with its thread and attachments, enforcing
// requester ownership.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, []domain.TicketMessage, []domain.Attachment, error) {
	ticket, err := s.getVisible(ctx, actor, ticketID)
	if err != nil {
		return nil, nil, nil, err
	}
	msgs, err := s.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	return ticket, msgs, attachments, nil
}

// Update applies a partial update to mutable ticket fields. The friendly ID
// and author are immutable.
func (s *TicketService) Update(ctx context.Context, actor *domain.User, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.getExisting(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		ticket.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": *input.Priority})
		}
		ticket.Priority = input.Priority
	}
	if input.RelatedSystem != nil {
		ticket.RelatedSystem = input.RelatedSystem
	}
	if input.AssignmentGroupID != nil {
		if *input.AssignmentGroupID == "" {
			ticket.AssignmentGroupID = nil
		} else {
			if _, err := s.groups.GetByID(ctx, *input.AssignmentGroupID); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, apperrors.NewNotFound("assignment group", map[string]any{"group_id": *input.AssignmentGroupID})
				}
				return nil, apperrors.MapError(err)
			}
			ticket.AssignmentGroupID = input.AssignmentGroupID
		}
	}
	if input.AssignedToID != nil {
		if _, err := s.users.GetByID(ctx, *input.AssignedToID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("user", map[string]any{"user_id": *input.AssignedToID})
			}
			return nil, apperrors.MapError(err)
		}
		ticket.AssignedToID = input.AssignedToID
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// Assign puts the ticket in the assignee's hands and moves it to
// IN_PROGRESS. Re-assignment is allowed from any prior state, including
// COMPLETED; the completer record is untouched.
func (s *TicketService) Assign(ctx context.Context, actor *domain.User, ticketID, userID string) (*domain.Ticket, error) {
	ticket, err := s.getExisting(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	assignee, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}

	ticket.AssignedToID = &assignee.ID
	ticket.Status = domain.TicketStatusInProgress
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Payload:  events.TicketAssignedPayload{AssignedToID: assignee.ID},
	})
	return ticket, nil
}

// UpdateStatus moves the ticket to any lifecycle state. No transition graph
// is enforced; every state is reachable from every other. When the target
// is COMPLETED and no completer is recorded yet, the acting user is
// recorded as the completer.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.User, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}
	ticket, err := s.getExisting(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	if newStatus == domain.TicketStatusCompleted && ticket.CompletedByID == nil {
		ticket.CompletedByID = &actor.ID
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

// Reopen resets a ticket to OPEN and clears the completer. The assignee is
// deliberately left in place so the ticket returns to whoever worked it.
func (s *TicketService) Reopen(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.getExisting(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	previousCompleter := ticket.CompletedByID
	ticket.Status = domain.TicketStatusOpen
	ticket.CompletedByID = nil
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketReopened,
		TicketID: ticket.ID,
		Payload:  events.TicketReopenedPayload{PreviousCompletedBy: previousCompleter},
	})
	return ticket, nil
}

// AddMessage appends a message to a ticket thread. Requesters may only post
// to their own tickets.
func (s *TicketService) AddMessage(ctx context.Context, actor *domain.User, ticketID string, input MessageInput) (*domain.TicketMessage, error) {
	ticket, err := s.getVisible(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}

	authorName := input.AuthorName
	if authorName == "" {
		authorName = actor.Name
	}
	authorEmail := input.AuthorEmail
	if authorEmail == "" {
		authorEmail = actor.Email
	}

	authorID := actor.ID
	msg := &domain.TicketMessage{
		TicketID:    ticket.ID,
		AuthorID:    &authorID,
		AuthorName:  authorName,
		AuthorEmail: authorEmail,
		Content:     content,
		IsAgent:     actor.IsAgent(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticket.ID,
		Payload: events.TicketMessageAddedPayload{
			MessageID:      msg.ID,
			AuthorName:     msg.AuthorName,
			IsAgent:        msg.IsAgent,
			ContentPreview: contentPreview(msg.Content, 120),
		},
	})
	return msg, nil
}

// AddAttachments records metadata for externally hosted files.
func (s *TicketService) AddAttachments(ctx context.Context, actor *domain.User, ticketID string, inputs []AttachmentInput) ([]domain.Attachment, error) {
	ticket, err := s.getVisible(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	records := make([]domain.Attachment, 0, len(inputs))
	for _, input := range inputs {
		if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.URL) == "" {
			return nil, apperrors.NewValidationError("attachment name and url required", nil)
		}
		record := domain.Attachment{
			TicketID:  ticket.ID,
			Name:      input.Name,
			SizeBytes: input.SizeBytes,
			MimeType:  input.MimeType,
			URL:       input.URL,
		}
		if err := s.attachments.Create(ctx, &record); err != nil {
			return nil, apperrors.MapError(err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Delete removes a ticket; owned messages and attachments cascade away with
// it.
func (s *TicketService) Delete(ctx context.Context, actor *domain.User, ticketID string) error {
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticketID,
	})
	return nil
}

func (s *TicketService) getExisting(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) getVisible(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.getExisting(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAgent() && ticket.AuthorID != actor.ID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

func (s *TicketService) resolveGroup(ctx context.Context, relatedSystem *string) (*string, error) {
	key := RouteGroupKey(relatedSystem)
	group, err := s.groups.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// routing target not provisioned; leave the ticket unrouted
			return nil, nil
		}
		return nil, err
	}
	return &group.ID, nil
}

func (s *TicketService) publishEvent(ctx context.Context, actor *domain.User, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Actor = events.Actor{UserID: actor.ID, Role: actor.Role}
	_ = s.dispatcher.Publish(ctx, event)
}

func contentPreview(content string, max int) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
