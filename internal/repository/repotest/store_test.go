package repotest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestUsers_DuplicateEmailIsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	require.NoError(t, users.Create(ctx, &domain.User{Email: "a@x.io", Role: domain.RoleClient}))
	err := users.Create(ctx, &domain.User{Email: "a@x.io", Role: domain.RoleClient})

	assert.True(t, apperrors.IsUniqueViolation(err))
}

func TestTickets_FilterAndOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	companyID := "c-1"
	assignee := &domain.User{Name: "Agent", Email: "agent@x.io", Role: domain.RoleSupport}
	require.NoError(t, store.Users().Create(ctx, assignee))

	first := &domain.Ticket{Title: "Printer jam", Description: "tray", Status: domain.TicketStatusOpen, CompanyID: &companyID}
	second := &domain.Ticket{Title: "VPN", Description: "cannot connect", Status: domain.TicketStatusOpen}
	require.NoError(t, store.Tickets().Create(ctx, first))
	require.NoError(t, store.Tickets().Create(ctx, second))
	second.Assign(assignee.ID)
	require.NoError(t, store.Tickets().Update(ctx, second))

	all, err := store.Tickets().ListWithFilter(ctx, repository.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	require.NotNil(t, all[0].Assignee)
	assert.Equal(t, "Agent", all[0].Assignee.Name)

	scoped, err := store.Tickets().ListWithFilter(ctx, repository.TicketFilter{CompanyID: &companyID})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, first.ID, scoped[0].ID)

	unassigned, err := store.Tickets().Count(ctx, repository.TicketFilter{Unassigned: true})
	require.NoError(t, err)
	assert.Equal(t, 1, unassigned)

	search := "CONNECT"
	found, err := store.Tickets().ListWithFilter(ctx, repository.TicketFilter{SearchTerm: &search})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, second.ID, found[0].ID)

	page, err := store.Tickets().ListWithFilter(ctx, repository.TicketFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)
}

func TestComments_InternalHiddenUnlessRequested(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	ticket := &domain.Ticket{Title: "t", Description: "d"}
	require.NoError(t, store.Tickets().Create(ctx, ticket))

	require.NoError(t, store.Comments().Create(ctx, &domain.TicketComment{TicketID: ticket.ID, Content: "public"}))
	require.NoError(t, store.Comments().Create(ctx, &domain.TicketComment{TicketID: ticket.ID, Content: "note", IsInternal: true}))

	public, err := store.Comments().ListByTicket(ctx, ticket.ID, false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "public", public[0].Content)

	everything, err := store.Comments().ListByTicket(ctx, ticket.ID, true)
	require.NoError(t, err)
	assert.Len(t, everything, 2)
}

func TestTickets_SearchMatchesWildcardsLiterally(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	literal := &domain.Ticket{Title: "Error a_b in module", Description: "x", Status: domain.TicketStatusOpen}
	lookalike := &domain.Ticket{Title: "Error axb in module", Description: "100 items", Status: domain.TicketStatusOpen}
	require.NoError(t, store.Tickets().Create(ctx, literal))
	require.NoError(t, store.Tickets().Create(ctx, lookalike))

	search := "A_B"
	found, err := store.Tickets().ListWithFilter(ctx, repository.TicketFilter{SearchTerm: &search})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, literal.ID, found[0].ID)

	percent := "100%"
	found, err = store.Tickets().ListWithFilter(ctx, repository.TicketFilter{SearchTerm: &percent})
	require.NoError(t, err)
	assert.Empty(t, found)
}
