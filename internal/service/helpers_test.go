package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/repotest"
)

type fixture struct {
	ctx        context.Context
	store      *repotest.Store
	dispatcher events.Dispatcher
	published  []events.Event

	tickets   *TicketService
	comments  *CommentService
	companies *CompanyService

	acme, globex *domain.Company
	support      *domain.User
	support2     *domain.User
	alice        *domain.User // acme client
	bob          *domain.User // acme client
	carol        *domain.User // globex client
	drifter      *domain.User // client without company
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), store: repotest.NewStore(), dispatcher: events.NewInMemoryDispatcher()}
	for _, et := range []events.EventType{
		events.EventTicketCreated, events.EventTicketUpdated, events.EventTicketStatusChanged,
		events.EventTicketAssigned, events.EventTicketUnassigned, events.EventCommentAdded,
	} {
		f.dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			f.published = append(f.published, e)
			return nil
		})
	}

	f.tickets = NewTicketService(TicketDependencies{
		TicketRepo:  f.store.Tickets(),
		UserRepo:    f.store.Users(),
		CommentRepo: f.store.Comments(),
		Dispatcher:  f.dispatcher,
	})
	f.comments = NewCommentService(CommentDependencies{
		TicketRepo:  f.store.Tickets(),
		CommentRepo: f.store.Comments(),
		Dispatcher:  f.dispatcher,
	})
	f.companies = NewCompanyService(f.store.Companies(), f.store.Users())

	f.acme = f.company(t, "Acme")
	f.globex = f.company(t, "Globex")
	f.support = f.user(t, "Sam", domain.RoleSupport, nil)
	f.support2 = f.user(t, "Sue", domain.RoleSupport, nil)
	f.alice = f.user(t, "Alice", domain.RoleClient, &f.acme.ID)
	f.bob = f.user(t, "Bob", domain.RoleClient, &f.acme.ID)
	f.carol = f.user(t, "Carol", domain.RoleClient, &f.globex.ID)
	f.drifter = f.user(t, "Drew", domain.RoleClient, nil)
	return f
}

func (f *fixture) company(t *testing.T, name string) *domain.Company {
	t.Helper()
	c := &domain.Company{Name: name}
	require.NoError(t, f.store.Companies().Create(f.ctx, c))
	return c
}

func (f *fixture) user(t *testing.T, name string, role domain.Role, companyID *string) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: name + "@example.com", Role: role, PasswordHash: "x", CompanyID: companyID}
	require.NoError(t, f.store.Users().Create(f.ctx, u))
	return u
}

func (f *fixture) ticket(t *testing.T, creator *domain.User, title string) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.CreateTicket(f.ctx, creator, TicketCreateInput{Title: title, Description: title + " details"})
	require.NoError(t, err)
	return ticket
}

func subject(u *domain.User) auth.Subject { return auth.SubjectFromUser(u) }

func ptr[T any](v T) *T { return &v }

func (f *fixture) eventTypes() []events.EventType {
	out := make([]events.EventType, 0, len(f.published))
	for _, e := range f.published {
		out = append(out, e.Type)
	}
	return out
}

func repositoryFilterAll() repository.TicketFilter { return repository.TicketFilter{} }
