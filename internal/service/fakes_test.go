package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/suportehub/helpdesk-service/internal/domain"
	"github.com/suportehub/helpdesk-service/internal/repository"
)

// In-memory repository fakes backing the service tests.

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.AuthorID != nil && ticket.AuthorID != *filter.AuthorID {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}

func (r *fakeTicketRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

type fakeMessageRepo struct {
	messages []domain.TicketMessage
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *domain.TicketMessage) error {
	msg.ID = fmt.Sprintf("MSG-%d", len(r.messages)+1)
	msg.CreatedAt = time.Now()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeMessageRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketMessage, error) {
	var result []domain.TicketMessage
	for _, msg := range r.messages {
		if msg.TicketID == ticketID {
			result = append(result, msg)
		}
	}
	return result, nil
}

type fakeAttachmentRepo struct {
	attachments []domain.Attachment
}

func (r *fakeAttachmentRepo) Create(ctx context.Context, attachment *domain.Attachment) error {
	attachment.ID = fmt.Sprintf("ATT-%d", len(r.attachments)+1)
	attachment.CreatedAt = time.Now()
	r.attachments = append(r.attachments, *attachment)
	return nil
}

func (r *fakeAttachmentRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	var result []domain.Attachment
	for _, att := range r.attachments {
		if att.TicketID == ticketID {
			result = append(result, att)
		}
	}
	return result, nil
}

type fakeGroupRepo struct {
	groups map[string]*domain.AssignmentGroup
	nextID int
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: map[string]*domain.AssignmentGroup{}}
}

func (r *fakeGroupRepo) seed(key, name string) *domain.AssignmentGroup {
	group := &domain.AssignmentGroup{Key: key, Name: name, Color: "#64748b"}
	_ = r.Create(context.Background(), group)
	return group
}

func (r *fakeGroupRepo) Create(ctx context.Context, group *domain.AssignmentGroup) error {
	r.nextID++
	group.ID = fmt.Sprintf("GRP-%d", r.nextID)
	group.CreatedAt = time.Now()
	group.UpdatedAt = group.CreatedAt
	clone := *group
	r.groups[group.ID] = &clone
	return nil
}

func (r *fakeGroupRepo) Update(ctx context.Context, group *domain.AssignmentGroup) error {
	if _, ok := r.groups[group.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *group
	r.groups[group.ID] = &clone
	return nil
}

func (r *fakeGroupRepo) GetByID(ctx context.Context, id string) (*domain.AssignmentGroup, error) {
	group, ok := r.groups[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *group
	return &clone, nil
}

func (r *fakeGroupRepo) GetByKey(ctx context.Context, key string) (*domain.AssignmentGroup, error) {
	for _, group := range r.groups {
		if group.Key == key {
			clone := *group
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeGroupRepo) List(ctx context.Context) ([]domain.AssignmentGroup, error) {
	var result []domain.AssignmentGroup
	for _, group := range r.groups {
		result = append(result, *group)
	}
	return result, nil
}

func (r *fakeGroupRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.groups[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.groups, id)
	return nil
}

type fakeUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) seed(name, email string, role domain.UserRole) *domain.User {
	user := &domain.User{Name: name, Email: email, Role: role}
	_ = r.Create(context.Background(), user)
	return user
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.nextID++
	user.ID = fmt.Sprintf("USR-%d", r.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	var result []domain.User
	for _, user := range r.users {
		result = append(result, *user)
	}
	return result, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

type fakeCodeRepo struct {
	codes map[string]*domain.AgentCode
	// consumeErr, when set, overrides Consume to simulate losing the
	// redemption race.
	consumeErr error
	nextID     int
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{codes: map[string]*domain.AgentCode{}}
}

func (r *fakeCodeRepo) seed(code string, used bool, usedBy *string) *domain.AgentCode {
	record := &domain.AgentCode{Code: code, Used: used, UsedBy: usedBy}
	_ = r.Create(context.Background(), record)
	return record
}

func (r *fakeCodeRepo) Create(ctx context.Context, code *domain.AgentCode) error {
	if _, ok := r.codes[code.Code]; ok {
		return nil
	}
	r.nextID++
	code.ID = fmt.Sprintf("AC-%d", r.nextID)
	code.CreatedAt = time.Now()
	clone := *code
	r.codes[code.Code] = &clone
	return nil
}

func (r *fakeCodeRepo) GetByCode(ctx context.Context, code string) (*domain.AgentCode, error) {
	record, ok := r.codes[code]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *record
	return &clone, nil
}

func (r *fakeCodeRepo) List(ctx context.Context) ([]domain.AgentCode, error) {
	var result []domain.AgentCode
	for _, record := range r.codes {
		result = append(result, *record)
	}
	return result, nil
}

func (r *fakeCodeRepo) Consume(ctx context.Context, code, userID string) error {
	if r.consumeErr != nil {
		return r.consumeErr
	}
	record, ok := r.codes[code]
	if !ok || record.Used {
		return repository.ErrCodeSpent
	}
	record.Used = true
	record.UsedBy = &userID
	return nil
}
