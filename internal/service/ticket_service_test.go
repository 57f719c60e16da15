package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suportehub/helpdesk-service/internal/domain"
	"github.com/suportehub/helpdesk-service/internal/events"
	"github.com/suportehub/helpdesk-service/internal/repository"
	apperrors "github.com/suportehub/helpdesk-service/pkg/util"
)

type ticketFixture struct {
	service *TicketService
	tickets *fakeTicketRepo
	groups  *fakeGroupRepo
	users   *fakeUserRepo
	events  *recordingDispatcher
}

type recordingDispatcher struct {
	events.Dispatcher
	published []events.Event
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{Dispatcher: events.NewInMemoryDispatcher()}
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return d.Dispatcher.Publish(ctx, event)
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	tickets := newFakeTicketRepo()
	groups := newFakeGroupRepo()
	users := newFakeUserRepo()
	dispatcher := newRecordingDispatcher()

	groups.seed("suporte-ti", "Suporte TI")
	groups.seed("infraestrutura", "Infraestrutura")
	groups.seed("rh", "Recursos Humanos")
	groups.seed("financeiro", "Financeiro")
	groups.seed("geral", "Geral")

	svc := NewTicketService(TicketDependencies{
		TicketRepo:     tickets,
		MessageRepo:    &fakeMessageRepo{},
		AttachmentRepo: &fakeAttachmentRepo{},
		GroupRepo:      groups,
		UserRepo:       users,
		Dispatcher:     dispatcher,
	})
	return &ticketFixture{service: svc, tickets: tickets, groups: groups, users: users, events: dispatcher}
}

func domainErrorCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %v", err)
	return domainErr.Code
}

func strPtr(s string) *string { return &s }

func TestCreateTicketRejectsDuplicateID(t *testing.T) {
	f := newTicketFixture(t)
	author := f.users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)

	_, err := f.service.Create(context.Background(), author, TicketCreateInput{
		ID: "TCK-001", Title: "Printer down", Description: "No output",
	})
	require.NoError(t, err)

	_, err = f.service.Create(context.Background(), author, TicketCreateInput{
		ID: "TCK-001", Title: "Other", Description: "Other",
	})
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_KEY", domainErrorCode(t, err))

	stored, err := f.tickets.GetByID(context.Background(), "TCK-001")
	require.NoError(t, err)
	assert.Equal(t, "Printer down", stored.Title, "existing ticket must be untouched")
}

func TestCreateTicketRoutesByRelatedSystem(t *testing.T) {
	f := newTicketFixture(t)
	author := f.users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)

	cases := []struct {
		system   *string
		groupKey string
	}{
		{strPtr("erp"), "suporte-ti"},
		{strPtr("crm"), "suporte-ti"},
		{strPtr("email"), "suporte-ti"},
		{strPtr("software"), "suporte-ti"},
		{strPtr("access"), "suporte-ti"},
		{strPtr("portal"), "suporte-ti"},
		{strPtr("network"), "infraestrutura"},
		{strPtr("hardware"), "infraestrutura"},
		{strPtr("printer"), "infraestrutura"},
		{strPtr("rh"), "rh"},
		{strPtr("financial"), "financeiro"},
		{strPtr("other"), "geral"},
		{strPtr("something-unknown"), "geral"},
		{nil, "geral"},
	}

	for i, tc := range cases {
		id := "TCK-" + string(rune('A'+i)) // unique per case
		ticket, err := f.service.Create(context.Background(), author, TicketCreateInput{
			ID: id, Title: "t", Description: "d", RelatedSystem: tc.system,
		})
		require.NoError(t, err)
		require.NotNil(t, ticket.AssignmentGroupID)

		group, err := f.groups.GetByID(context.Background(), *ticket.AssignmentGroupID)
		require.NoError(t, err)
		assert.Equal(t, tc.groupKey, group.Key)
	}
}

func TestCreateTicketExplicitGroupWinsOverRouting(t *testing.T) {
	f := newTicketFixture(t)
	author := f.users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)
	rhGroup, err := f.groups.GetByKey(context.Background(), "rh")
	require.NoError(t, err)

	ticket, err := f.service.Create(context.Background(), author, TicketCreateInput{
		ID: "TCK-010", Title: "t", Description: "d",
		RelatedSystem:     strPtr("printer"),
		AssignmentGroupID: &rhGroup.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, ticket.AssignmentGroupID)
	assert.Equal(t, rhGroup.ID, *ticket.AssignmentGroupID)
}

func TestCreateTicketUnroutedWhenTargetGroupMissing(t *testing.T) {
	f := newTicketFixture(t)
	author := f.users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)

	// Remove the infra group so printer tickets have no routing target.
	infra, err := f.groups.GetByKey(context.Background(), "infraestrutura")
	require.NoError(t, err)
	require.NoError(t, f.groups.Delete(context.Background(), infra.ID))

	ticket, err := f.service.Create(context.Background(), author, TicketCreateInput{
		ID: "TCK-011", Title: "t", Description: "d", RelatedSystem: strPtr("printer"),
	})
	require.NoError(t, err)
	assert.Nil(t, ticket.AssignmentGroupID)
}

func TestListScopesRequestersToOwnTickets(t *testing.T) {
	f := newTicketFixture(t)
	requester := f.users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)
	other := f.users.seed("Maria", "maria@empresa.com", domain.UserRoleRequester)
	agent := f.users.seed("Suporte", "suporte@agente.com", domain.UserRoleAgent)

	_, err := f.service.Create(context.Background(), requester, TicketCreateInput{ID: "TCK-020", Title: "t", Description: "d"})
	require.NoError(t, err)
	_, err = f.service.Create(context.Background(), other, TicketCreateInput{ID: "TCK-021", Title: "t", Description: "d"})
	require.NoError(t, err)

	mine, err := f.service.List(context.Background(), requester, repository.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "TCK-020", mine[0].ID)

	all, err := f.service.List(context.Background(), agent, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetEnforcesRequesterOwnership(t *testing.T) {
	f := newTicketFixture(t)
	owner := f.users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)
	stranger := f.users.seed("Maria", "maria@empresa.com", domain.UserRoleRequester)
	agent := f.users.seed("Suporte", "suporte@agente.com", domain.UserRoleAgent)

	_, err := f.service.Create(context.Background(), owner, TicketCreateInput{ID: "TCK-030", Title: "t", Description: "d"})
	require.NoError(t, err)

	_, _, _, err = f.service.Get(context.Background(), stranger, "TCK-030")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", domainErrorCode(t, err))

	_, _, _, err = f.service.Get(context.Background(), agent, "TCK-030")
	assert.NoError(t, err)

	_, _, _, err = f.service.Get(context.Background(), agent, "TCK-missing")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))
}

func TestAssignSetsInProgressFromAnyState(t *testing.T) {
	f := newTicketFixture(t)
	author := f.users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)
	agent := f.users.seed("Suporte", "suporte@agente.com", domain.UserRoleAgent)
	second := f.users.seed("Outro", "outro@agente.com", domain.UserRoleAgent)

	_, err := f.service.Create(context.Background(), author, TicketCreateInput{ID: "TCK-040", Title: "t", Description: "d"})
	require.NoError(t, err)

	ticket, err := f.service.Assign(context.Background(), agent, "TCK-040", agent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	require.NotNil(t, ticket.AssignedToID)
	assert.Equal(t, agent.ID, *ticket.AssignedToID)

	// Complete it, then reassign; the completer record must survive.
	ticket, err = f.service.UpdateStatus(context.Background(), agent, "TCK-040", domain.TicketStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, ticket.CompletedByID)

	ticket, err = f.service.Assign(context.Background(), agent, "TCK-040", second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	assert.Equal(t, second.ID, *ticket.AssignedToID)
	require.NotNil(t, ticket.CompletedByID)
	assert.Equal(t, agent.ID, *ticket.CompletedByID)
}

func TestAssignUnknownUserFails(t *testing.T) {
	f := newTicketFixture(t)
	author := f.users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)
	agent := f.users.seed("Suporte", "suporte@agente.com", domain.UserRoleAgent)

	_, err := f.service.Create(context.Background(), author, TicketCreateInput{ID: "TCK-041", Title: "t", Description: "d"})
	require.NoError(t, err)

	_, err = f.service.Assign(context.Background(), agent, "TCK-041", "USR-999")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	f := newTicketFixture(t)
	author := f.users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)
	agent := f.users.seed("Suporte", "suporte@agente.com", domain.UserRoleAgent)

	_, err := f.service.Create(context.Background(), author, TicketCreateInput{ID: "TCK-050", Title: "t", Description: "d"})
	require.NoError(t, err)

	for _, status := range []domain.TicketStatus{
		domain.TicketStatusCompleted,
		domain.TicketStatusWaiting,
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
	} {
		ticket, err := f.service.UpdateStatus(context.Background(), agent, "TCK-050", status)
		require.NoError(t, err)
		assert.Equal(t, status, ticket.Status)
	}

	_, err = f.service.UpdateStatus(context.Background(), agent, "TCK-050", domain.TicketStatus("CLOSED"))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainErrorCode(t, err))
}

func TestUpdateStatusRecordsFirstCompleterOnly(t *testing.T) {
	f := newTicketFixture(t)
	author := f.users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)
	first := f.users.seed("Suporte", "suporte@agente.com", domain.UserRoleAgent)
	second := f.users.seed("Outro", "outro@agente.com", domain.UserRoleAgent)

	_, err := f.service.Create(context.Background(), author, TicketCreateInput{ID: "TCK-051", Title: "t", Description: "d"})
	require.NoError(t, err)

	ticket, err := f.service.UpdateStatus(context.Background(), first, "TCK-051", domain.TicketStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, ticket.CompletedByID)
	assert.Equal(t, first.ID, *ticket.CompletedByID)

	// Completing again with another actor keeps the original completer.
	ticket, err = f.service.UpdateStatus(context.Background(), second, "TCK-051", domain.TicketStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, first.ID, *ticket.CompletedByID)
}

func TestReopenClearsCompleterKeepsAssignee(t *testing.T) {
	f := newTicketFixture(t)
	author := f.users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)
	agent := f.users.seed("Suporte", "suporte@agente.com", domain.UserRoleAgent)

	_, err := f.service.Create(context.Background(), author, TicketCreateInput{ID: "TCK-060", Title: "t", Description: "d"})
	require.NoError(t, err)
	_, err = f.service.Assign(context.Background(), agent, "TCK-060", agent.ID)
	require.NoError(t, err)
	_, err = f.service.UpdateStatus(context.Background(), agent, "TCK-060", domain.TicketStatusCompleted)
	require.NoError(t, err)

	ticket, err := f.service.Reopen(context.Background(), agent, "TCK-060")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Nil(t, ticket.CompletedByID)
	require.NotNil(t, ticket.AssignedToID)
	assert.Equal(t, agent.ID, *ticket.AssignedToID)
}

func TestUpdateClearsGroupWithEmptyString(t *testing.T) {
	f := newTicketFixture(t)
	author := f.users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)
	agent := f.users.seed("Suporte", "suporte@agente.com", domain.UserRoleAgent)

	created, err := f.service.Create(context.Background(), author, TicketCreateInput{
		ID: "TCK-070", Title: "t", Description: "d", RelatedSystem: strPtr("erp"),
	})
	require.NoError(t, err)
	require.NotNil(t, created.AssignmentGroupID)

	ticket, err := f.service.Update(context.Background(), agent, "TCK-070", TicketUpdateInput{
		AssignmentGroupID: strPtr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, ticket.AssignmentGroupID)

	_, err = f.service.Update(context.Background(), agent, "TCK-070", TicketUpdateInput{
		AssignmentGroupID: strPtr("GRP-missing"),
	})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))
}

func TestAddMessageDefaultsAuthorFromActor(t *testing.T) {
	f := newTicketFixture(t)
	author := f.users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)
	agent := f.users.seed("Suporte", "suporte@agente.com", domain.UserRoleAgent)

	_, err := f.service.Create(context.Background(), author, TicketCreateInput{ID: "TCK-080", Title: "t", Description: "d"})
	require.NoError(t, err)

	msg, err := f.service.AddMessage(context.Background(), agent, "TCK-080", MessageInput{Content: "on it"})
	require.NoError(t, err)
	assert.Equal(t, "Suporte", msg.AuthorName)
	assert.Equal(t, "suporte@agente.com", msg.AuthorEmail)
	assert.True(t, msg.IsAgent)

	_, err = f.service.AddMessage(context.Background(), author, "TCK-080", MessageInput{Content: "   "})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainErrorCode(t, err))
}

func TestAddMessageForbiddenOnForeignTicket(t *testing.T) {
	f := newTicketFixture(t)
	owner := f.users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)
	stranger := f.users.seed("Maria", "maria@empresa.com", domain.UserRoleRequester)

	_, err := f.service.Create(context.Background(), owner, TicketCreateInput{ID: "TCK-081", Title: "t", Description: "d"})
	require.NoError(t, err)

	_, err = f.service.AddMessage(context.Background(), stranger, "TCK-081", MessageInput{Content: "hi"})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", domainErrorCode(t, err))
}

func TestAddAttachmentsValidatesMetadata(t *testing.T) {
	f := newTicketFixture(t)
	author := f.users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)

	_, err := f.service.Create(context.Background(), author, TicketCreateInput{ID: "TCK-090", Title: "t", Description: "d"})
	require.NoError(t, err)

	records, err := f.service.AddAttachments(context.Background(), author, "TCK-090", []AttachmentInput{
		{Name: "log.txt", SizeBytes: 120, MimeType: "text/plain", URL: "https://files.example.com/log.txt"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "TCK-090", records[0].TicketID)

	_, err = f.service.AddAttachments(context.Background(), author, "TCK-090", []AttachmentInput{{Name: "", URL: ""}})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainErrorCode(t, err))
}

func TestDeleteTicketEmitsEvent(t *testing.T) {
	f := newTicketFixture(t)
	author := f.users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)
	agent := f.users.seed("Suporte", "suporte@agente.com", domain.UserRoleAgent)

	_, err := f.service.Create(context.Background(), author, TicketCreateInput{ID: "TCK-100", Title: "t", Description: "d"})
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(context.Background(), agent, "TCK-100"))

	err = f.service.Delete(context.Background(), agent, "TCK-100")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))

	last := f.events.published[len(f.events.published)-1]
	assert.Equal(t, events.EventTicketDeleted, last.Type)
	assert.Equal(t, agent.ID, last.Actor.UserID)
	assert.NotEmpty(t, last.ID)
	assert.False(t, last.Timestamp.IsZero())
}

func TestContentPreviewKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("çã", 100)
	preview := contentPreview(long, 120)

	assert.True(t, utf8.ValidString(preview), "preview must never split a rune")
	assert.True(t, strings.HasSuffix(preview, "..."))
	assert.Equal(t, 120, utf8.RuneCountInString(preview))

	short := "descrição curta"
	assert.Equal(t, short, contentPreview(short, 120))

	assert.Equal(t, "çã", contentPreview(strings.Repeat("çã", 5), 2))
}
