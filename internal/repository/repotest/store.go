// Package repotest provides in-memory repositories that mirror the Postgres
// implementations closely enough for service and handler tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Store holds every table. Timestamps advance one millisecond per write so
// ordering is deterministic.
type Store struct {
	mu        sync.Mutex
	tick      int
	users     map[string]domain.User
	companies map[string]domain.Company
	tickets   map[string]domain.Ticket
	comments  map[string]domain.TicketComment
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:     map[string]domain.User{},
		companies: map[string]domain.Company{},
		tickets:   map[string]domain.Ticket{},
		comments:  map[string]domain.TicketComment{},
	}
}

func (s *Store) now() time.Time {
	s.tick++
	return epoch.Add(time.Duration(s.tick) * time.Millisecond)
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func (s *Store) Users() repository.UserRepository             { return userRepo{s} }
func (s *Store) Companies() repository.CompanyRepository      { return companyRepo{s} }
func (s *Store) Tickets() repository.TicketRepository         { return ticketRepo{s} }
func (s *Store) Comments() repository.TicketCommentRepository { return commentRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return uniqueViolation("users_email_key")
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) SetCompany(_ context.Context, userID string, companyID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	u.CompanyID = cloneString(companyID)
	u.UpdatedAt = r.s.now()
	r.s.users[userID] = u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	u.CompanyID = cloneString(u.CompanyID)
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			u.CompanyID = cloneString(u.CompanyID)
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r userRepo) ListByCompanies(_ context.Context, companyIDs []string) (map[string][]domain.UserSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range companyIDs {
		wanted[id] = true
	}
	result := make(map[string][]domain.UserSummary, len(companyIDs))
	for _, u := range r.s.users {
		if u.CompanyID != nil && wanted[*u.CompanyID] {
			result[*u.CompanyID] = append(result[*u.CompanyID], summaryOf(u))
		}
	}
	for id := range result {
		list := result[id]
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}
	return result, nil
}

func (r userRepo) CountByCompany(_ context.Context, companyID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, u := range r.s.users {
		if u.CompanyID != nil && *u.CompanyID == companyID {
			count++
		}
	}
	return count, nil
}

type companyRepo struct{ s *Store }

func (r companyRepo) taxIDTaken(taxID *string, exceptID string) bool {
	if taxID == nil {
		return false
	}
	for id, c := range r.s.companies {
		if id != exceptID && c.TaxID != nil && *c.TaxID == *taxID {
			return true
		}
	}
	return false
}

func (r companyRepo) Create(_ context.Context, company *domain.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.taxIDTaken(company.TaxID, "") {
		return uniqueViolation("companies_tax_id_key")
	}
	company.ID = uuid.NewString()
	company.CreatedAt = r.s.now()
	company.UpdatedAt = company.CreatedAt
	stored := *company
	stored.TaxID = cloneString(company.TaxID)
	stored.Users = nil
	r.s.companies[company.ID] = stored
	return nil
}

func (r companyRepo) Update(_ context.Context, company *domain.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.companies[company.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if r.taxIDTaken(company.TaxID, company.ID) {
		return uniqueViolation("companies_tax_id_key")
	}
	existing.Name = company.Name
	existing.TaxID = cloneString(company.TaxID)
	existing.UpdatedAt = r.s.now()
	company.UpdatedAt = existing.UpdatedAt
	r.s.companies[company.ID] = existing
	return nil
}

func (r companyRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.companies, id)
	for tid, t := range r.s.tickets {
		if t.CompanyID != nil && *t.CompanyID == id {
			t.CompanyID = nil
			r.s.tickets[tid] = t
		}
	}
	return nil
}

func (r companyRepo) GetByID(_ context.Context, id string) (*domain.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c.TaxID = cloneString(c.TaxID)
	return &c, nil
}

func (r companyRepo) GetByTaxID(_ context.Context, taxID string) (*domain.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.companies {
		if c.TaxID != nil && *c.TaxID == taxID {
			c.TaxID = cloneString(c.TaxID)
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r companyRepo) List(_ context.Context) ([]domain.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]domain.Company, 0, len(r.s.companies))
	for _, c := range r.s.companies {
		c.TaxID = cloneString(c.TaxID)
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = r.s.now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.s.tickets[ticket.ID] = stripTicket(*ticket)
	return nil
}

func (r ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.Title = ticket.Title
	existing.Description = ticket.Description
	existing.Priority = ticket.Priority
	existing.Status = ticket.Status
	existing.Type = ticket.Type
	existing.AssigneeID = cloneString(ticket.AssigneeID)
	existing.UpdatedAt = r.s.now()
	ticket.UpdatedAt = existing.UpdatedAt
	r.s.tickets[ticket.ID] = existing
	return nil
}

func (r ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	t = r.hydrate(t)
	return &t, nil
}

func (r ticketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matched := r.match(filter)
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if filter.Limit > 0 {
		start := filter.Offset
		if start < 0 {
			start = 0
		}
		if start > len(matched) {
			start = len(matched)
		}
		end := start + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	result := make([]domain.Ticket, 0, len(matched))
	for _, t := range matched {
		result = append(result, r.hydrate(t))
	}
	return result, nil
}

func (r ticketRepo) Count(_ context.Context, filter repository.TicketFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.match(filter)), nil
}

func (r ticketRepo) match(filter repository.TicketFilter) []domain.Ticket {
	var search string
	if filter.SearchTerm != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
	}
	var out []domain.Ticket
	for _, t := range r.s.tickets {
		if filter.CompanyID != nil && (t.CompanyID == nil || *t.CompanyID != *filter.CompanyID) {
			continue
		}
		if filter.Unassigned && t.AssigneeID != nil {
			continue
		}
		if !filter.Unassigned && filter.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *filter.AssigneeID) {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.Type != nil && t.Type != *filter.Type {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (r ticketRepo) hydrate(t domain.Ticket) domain.Ticket {
	t.CompanyID = cloneString(t.CompanyID)
	t.AssigneeID = cloneString(t.AssigneeID)
	if u, ok := r.s.users[t.CreatorID]; ok {
		summary := summaryOf(u)
		t.Creator = &summary
	}
	if t.AssigneeID != nil {
		if u, ok := r.s.users[*t.AssigneeID]; ok {
			summary := summaryOf(u)
			t.Assignee = &summary
		}
	}
	return t
}

type commentRepo struct{ s *Store }

func (r commentRepo) Create(_ context.Context, comment *domain.TicketComment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[comment.TicketID]; !ok {
		return &pgconn.PgError{Code: "23503", ConstraintName: "ticket_comments_ticket_id_fkey"}
	}
	comment.ID = uuid.NewString()
	comment.CreatedAt = r.s.now()
	comment.UpdatedAt = comment.CreatedAt
	stored := *comment
	stored.Author = nil
	r.s.comments[comment.ID] = stored
	return nil
}

func (r commentRepo) Update(_ context.Context, comment *domain.TicketComment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.comments[comment.ID]
	if !ok || existing.TicketID != comment.TicketID {
		return pgx.ErrNoRows
	}
	existing.Content = comment.Content
	existing.UpdatedAt = r.s.now()
	comment.UpdatedAt = existing.UpdatedAt
	r.s.comments[comment.ID] = existing
	return nil
}

func (r commentRepo) Delete(_ context.Context, ticketID, commentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.comments[commentID]
	if !ok || existing.TicketID != ticketID {
		return pgx.ErrNoRows
	}
	delete(r.s.comments, commentID)
	return nil
}

func (r commentRepo) GetByID(_ context.Context, ticketID, commentID string) (*domain.TicketComment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[commentID]
	if !ok || c.TicketID != ticketID {
		return nil, pgx.ErrNoRows
	}
	c = r.hydrate(c)
	return &c, nil
}

func (r commentRepo) ListByTicket(_ context.Context, ticketID string, includeInternal bool) ([]domain.TicketComment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.TicketComment
	for _, c := range r.s.comments {
		if c.TicketID != ticketID || (c.IsInternal && !includeInternal) {
			continue
		}
		result = append(result, r.hydrate(c))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r commentRepo) hydrate(c domain.TicketComment) domain.TicketComment {
	if u, ok := r.s.users[c.AuthorID]; ok {
		summary := summaryOf(u)
		c.Author = &summary
	}
	return c
}

func stripTicket(t domain.Ticket) domain.Ticket {
	t.CompanyID = cloneString(t.CompanyID)
	t.AssigneeID = cloneString(t.AssigneeID)
	t.Creator = nil
	t.Assignee = nil
	t.Comments = nil
	return t
}

func summaryOf(u domain.User) domain.UserSummary {
	return domain.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
