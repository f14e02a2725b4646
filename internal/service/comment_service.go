package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// CommentService manages ticket comments and their visibility.
type CommentService struct {
	tickets  repository.TicketRepository
	comments repository.TicketCommentRepository
	events   publisher
}

// CommentDependencies bundles repositories for comment service.
type CommentDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.TicketCommentRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		tickets:  deps.TicketRepo,
		comments: deps.CommentRepo,
		events:   publisher{dispatcher: deps.Dispatcher, logger: deps.Logger},
	}
}

// AddComment posts a comment. isInternal is dropped for non-support authors.
func (s *CommentService) AddComment(ctx context.Context, actor auth.Subject, ticketID, content string, isInternal bool) (*domain.TicketComment, error) {
	body := strings.TrimSpace(content)
	if body == "" {
		return nil, apperrors.NewValidationError("content is required", map[string]any{"content": "must not be empty"})
	}
	ticket, err := s.readableTicket(ctx, actor, auth.OpCommentCreate, ticketID)
	if err != nil {
		return nil, err
	}

	comment := &domain.TicketComment{
		TicketID:   ticket.ID,
		AuthorID:   actor.UserID,
		Content:    body,
		IsInternal: isInternal && domain.CanSeeInternal(actor.Role),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	created, err := s.comments.GetByID(ctx, ticket.ID, comment.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.events.publish(ctx, events.EventCommentAdded, ticket.ID, actor, events.CommentAddedPayload{
		CommentID:      created.ID,
		IsInternal:     created.IsInternal,
		ContentPreview: stringPreview(created.Content, 120),
	})
	return created, nil
}

// ListComments returns the thread in chronological order, hiding internal
// comments from clients.
func (s *CommentService) ListComments(ctx context.Context, actor auth.Subject, ticketID string) ([]domain.TicketComment, error) {
	ticket, err := s.readableTicket(ctx, actor, auth.OpCommentRead, ticketID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID, domain.CanSeeInternal(actor.Role))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	visible := domain.VisibleTo(actor.Role, comments)
	if visible == nil {
		visible = []domain.TicketComment{}
	}
	return visible, nil
}

// UpdateComment replaces the content of a comment. Only support or the author may edit.
func (s *CommentService) UpdateComment(ctx context.Context, actor auth.Subject, ticketID, commentID, content string) (*domain.TicketComment, error) {
	body := strings.TrimSpace(content)
	if body == "" {
		return nil, apperrors.NewValidationError("content is required", map[string]any{"content": "must not be empty"})
	}
	comment, err := s.comments.GetByID(ctx, ticketID, commentID)
	if err != nil {
		return nil, lookupError(err, "comment", map[string]any{"comment_id": commentID})
	}
	if err := auth.Authorize(actor, auth.OpCommentUpdate, auth.Resource{OwnerID: comment.AuthorID}); err != nil {
		return nil, err
	}

	comment.Content = body
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, lookupError(err, "comment", map[string]any{"comment_id": commentID})
	}
	return comment, nil
}

// DeleteComment removes a comment. Only support or the author may delete.
func (s *CommentService) DeleteComment(ctx context.Context, actor auth.Subject, ticketID, commentID string) error {
	comment, err := s.comments.GetByID(ctx, ticketID, commentID)
	if err != nil {
		return lookupError(err, "comment", map[string]any{"comment_id": commentID})
	}
	if err := auth.Authorize(actor, auth.OpCommentDelete, auth.Resource{OwnerID: comment.AuthorID}); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, ticketID, commentID); err != nil {
		return lookupError(err, "comment", map[string]any{"comment_id": commentID})
	}
	return nil
}

func (s *CommentService) readableTicket(ctx context.Context, actor auth.Subject, op auth.Operation, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, lookupError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if err := auth.Authorize(actor, op, auth.TicketResource(ticket)); err != nil {
		return nil, err
	}
	return ticket, nil
}
