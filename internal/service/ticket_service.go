package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets  repository.TicketRepository
	users    repository.UserRepository
	comments repository.TicketCommentRepository
	events   publisher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	CommentRepo repository.TicketCommentRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:  deps.TicketRepo,
		users:    deps.UserRepo,
		comments: deps.CommentRepo,
		events:   publisher{dispatcher: deps.Dispatcher, logger: deps.Logger},
	}
}

// TicketCreateInput describes ticket creation payload. Empty priority and
// type fall back to the defaults.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    string
	Type        string
}

// TicketListQuery holds raw list parameters. Page and Limit are nil when the
// caller did not ask for pagination.
type TicketListQuery struct {
	Status     string
	Priority   string
	Type       string
	AssignedTo string
	Search     string
	Page       *int
	Limit      *int
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// TicketListResult is a listing plus the filters it was computed with.
type TicketListResult struct {
	Tickets    []domain.Ticket
	Count      int
	Pagination *Pagination
	Filters    TicketListQuery
}

// CreateTicket opens a ticket on behalf of the creator's company.
func (s *TicketService) CreateTicket(ctx context.Context, creator *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if err := auth.Authorize(auth.SubjectFromUser(creator), auth.OpTicketCreate, auth.Resource{}); err != nil {
		return nil, err
	}

	problems := domain.FieldErrors{}
	if strings.TrimSpace(input.Title) == "" {
		problems["title"] = "is required"
	}
	if strings.TrimSpace(input.Description) == "" {
		problems["description"] = "is required"
	}
	var priority domain.TicketPriority
	if strings.TrimSpace(input.Priority) != "" {
		p, err := domain.ParsePriority(input.Priority)
		if err != nil {
			problems["priority"] = err.Error()
		}
		priority = p
	}
	var ticketType domain.TicketType
	if strings.TrimSpace(input.Type) != "" {
		tt, err := domain.ParseType(input.Type)
		if err != nil {
			problems["type"] = err.Error()
		}
		ticketType = tt
	}
	if len(problems) > 0 {
		return nil, fieldValidationError("invalid ticket", problems)
	}

	ticket := domain.NewTicket(creator, input.Title, input.Description, priority, ticketType)
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	summary := domain.UserSummary{ID: creator.ID, Name: creator.Name, Email: creator.Email, Role: creator.Role}
	ticket.Creator = &summary

	s.events.publish(ctx, events.EventTicketCreated, ticket.ID, auth.SubjectFromUser(creator), events.TicketCreatedPayload{
		CompanyID: ticket.CompanyID,
		Priority:  ticket.Priority,
		Type:      ticket.Type,
		Title:     ticket.Title,
	})
	return ticket, nil
}

// ListTickets returns tickets visible to the actor, newest first.
func (s *TicketService) ListTickets(ctx context.Context, actor auth.Subject, query TicketListQuery) (*TicketListResult, error) {
	filter := repository.TicketFilter{}

	if strings.TrimSpace(query.Status) != "" {
		status, err := domain.NormalizeStatus(query.Status)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"status": query.Status})
		}
		filter.Status = &status
	}
	if strings.TrimSpace(query.Priority) != "" {
		priority, err := domain.ParsePriority(query.Priority)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"priority": query.Priority})
		}
		filter.Priority = &priority
	}
	if strings.TrimSpace(query.Type) != "" {
		ticketType, err := domain.ParseType(query.Type)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"type": query.Type})
		}
		filter.Type = &ticketType
	}
	if assignee := strings.TrimSpace(query.AssignedTo); assignee != "" && actor.IsSupport() {
		if assignee == "null" || assignee == "unassigned" {
			filter.Unassigned = true
		} else {
			filter.AssigneeID = &assignee
		}
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		filter.SearchTerm = &search
	}

	result := &TicketListResult{Tickets: []domain.Ticket{}, Filters: query}

	companyID, ok := auth.TicketListScope(actor)
	if !ok {
		// A client without a company matches no ticket.
		if query.Page != nil || query.Limit != nil {
			page, limit := pageBounds(query)
			result.Pagination = &Pagination{Page: page, Limit: limit}
		}
		return result, nil
	}
	filter.CompanyID = companyID

	if query.Page == nil && query.Limit == nil {
		tickets, err := s.tickets.ListWithFilter(ctx, filter)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if tickets != nil {
			result.Tickets = tickets
		}
		result.Count = len(result.Tickets)
		return result, nil
	}

	page, limit := pageBounds(query)
	total, err := s.tickets.Count(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if tickets != nil {
		result.Tickets = tickets
	}
	result.Count = len(result.Tickets)
	result.Pagination = &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
	return result, nil
}

func pageBounds(query TicketListQuery) (int, int) {
	page, limit := 1, defaultPageSize
	if query.Page != nil && *query.Page > 0 {
		page = *query.Page
	}
	if query.Limit != nil && *query.Limit > 0 {
		limit = *query.Limit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// GetTicket loads a ticket the actor may read, optionally with the comments
// the actor is allowed to see.
func (s *TicketService) GetTicket(ctx context.Context, actor auth.Subject, ticketID string, includeComments bool) (*domain.Ticket, error) {
	ticket, err := s.loadReadable(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if includeComments {
		comments, err := s.comments.ListByTicket(ctx, ticket.ID, domain.CanSeeInternal(actor.Role))
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		ticket.Comments = domain.VisibleTo(actor.Role, comments)
		if ticket.Comments == nil {
			ticket.Comments = []domain.TicketComment{}
		}
	}
	return ticket, nil
}

// UpdateTicket applies a partial update. Status is only accepted from support
// and every supplied field is validated before anything is written.
func (s *TicketService) UpdateTicket(ctx context.Context, actor auth.Subject, ticketID string, update domain.TicketFieldUpdate) (*domain.Ticket, error) {
	ticket, err := s.loadReadable(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	if update.Status != nil {
		if err := auth.Authorize(actor, auth.OpTicketUpdateStatus, auth.TicketResource(ticket)); err != nil {
			return nil, err
		}
	}
	if update.TouchesContent() {
		if err := auth.Authorize(actor, auth.OpTicketUpdateFields, auth.TicketResource(ticket)); err != nil {
			return nil, err
		}
	}

	changes, err := update.Validate()
	if err != nil {
		return nil, updateValidationError(err)
	}

	oldStatus := ticket.Status
	ticket.Apply(changes)
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	s.events.publish(ctx, events.EventTicketUpdated, ticket.ID, actor, events.TicketUpdatedPayload{Fields: changedFields(changes)})
	if changes.Status != nil && oldStatus != ticket.Status {
		s.events.publish(ctx, events.EventTicketStatusChanged, ticket.ID, actor, events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		})
	}
	return ticket, nil
}

// UpdateStatus sets a normalized status. Any enumerated status may follow any other.
func (s *TicketService) UpdateStatus(ctx context.Context, actor auth.Subject, ticketID, rawStatus string) (*domain.Ticket, error) {
	if err := auth.Authorize(actor, auth.OpTicketUpdateStatus, auth.Resource{}); err != nil {
		return nil, err
	}
	if strings.TrimSpace(rawStatus) == "" {
		return nil, apperrors.NewValidationError("status is required", nil)
	}
	status, err := domain.NormalizeStatus(rawStatus)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"status": rawStatus})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	oldStatus := ticket.Status
	ticket.Status = status
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	s.events.publish(ctx, events.EventTicketStatusChanged, ticket.ID, actor, events.TicketStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: status,
	})
	return ticket, nil
}

// AssignTicket assigns the ticket to supportUserID, or to the actor when it
// is empty. An open ticket moves to in_progress.
func (s *TicketService) AssignTicket(ctx context.Context, actor auth.Subject, ticketID, supportUserID string) (*domain.Ticket, error) {
	if err := auth.Authorize(actor, auth.OpTicketAssign, auth.Resource{}); err != nil {
		return nil, err
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	assigneeID := strings.TrimSpace(supportUserID)
	if assigneeID == "" {
		assigneeID = actor.UserID
	}
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, lookupError(err, "user", map[string]any{"user_id": assigneeID})
	}
	if !assignee.IsSupport() {
		return nil, apperrors.NewValidationError("user must have support role", map[string]any{"user_id": assigneeID})
	}

	previous := ticket.AssigneeID
	ticket.Assign(assignee.ID)
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	ticket.Assignee = &domain.UserSummary{ID: assignee.ID, Name: assignee.Name, Email: assignee.Email, Role: assignee.Role}

	s.events.publish(ctx, events.EventTicketAssigned, ticket.ID, actor, events.TicketAssignedPayload{
		AssigneeID:         ticket.AssigneeID,
		PreviousAssigneeID: previous,
		Status:             ticket.Status,
	})
	return ticket, nil
}

// UnassignTicket clears the assignee. An in_progress ticket returns to open.
func (s *TicketService) UnassignTicket(ctx context.Context, actor auth.Subject, ticketID string) (*domain.Ticket, error) {
	if err := auth.Authorize(actor, auth.OpTicketUnassign, auth.Resource{}); err != nil {
		return nil, err
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	previous := ticket.AssigneeID
	ticket.Unassign()
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	s.events.publish(ctx, events.EventTicketUnassigned, ticket.ID, actor, events.TicketAssignedPayload{
		PreviousAssigneeID: previous,
		Status:             ticket.Status,
	})
	return ticket, nil
}

// ListAssignedToMe returns tickets assigned to the support actor, newest first.
func (s *TicketService) ListAssignedToMe(ctx context.Context, actor auth.Subject) ([]domain.Ticket, error) {
	if err := auth.Authorize(actor, auth.OpTicketListAssigned, auth.Resource{}); err != nil {
		return nil, err
	}
	assignee := actor.UserID
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{AssigneeID: &assignee})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

// loadReadable fetches a ticket then checks read access: 404 before 403.
func (s *TicketService) loadReadable(ctx context.Context, actor auth.Subject, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if err := auth.Authorize(actor, auth.OpTicketRead, auth.TicketResource(ticket)); err != nil {
		return nil, err
	}
	return ticket, nil
}

func updateValidationError(err error) error {
	if errors.Is(err, domain.ErrNoFieldUpdates) {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	var problems domain.FieldErrors
	if errors.As(err, &problems) {
		return fieldValidationError("invalid ticket update", problems)
	}
	return apperrors.NewValidationError(err.Error(), nil)
}

func fieldValidationError(message string, problems domain.FieldErrors) error {
	details := make(map[string]any, len(problems))
	for field, problem := range problems {
		details[field] = problem
	}
	return apperrors.NewValidationError(message, details)
}

func changedFields(c domain.TicketChanges) []string {
	var fields []string
	if c.Title != nil {
		fields = append(fields, "title")
	}
	if c.Description != nil {
		fields = append(fields, "description")
	}
	if c.Priority != nil {
		fields = append(fields, "priority")
	}
	if c.Type != nil {
		fields = append(fields, "type")
	}
	if c.Status != nil {
		fields = append(fields, "status")
	}
	return fields
}
