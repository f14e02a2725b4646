package dto

import (
	"fmt"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	Priority    string `json:"priority"`
	Type        string `json:"type"`
}

// UpdateTicketRequest is a partial update; absent fields stay nil.
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Type        *string `json:"type"`
	Status      *string `json:"status"`
}

// FieldUpdate converts the request into a domain update.
func (r UpdateTicketRequest) FieldUpdate() domain.TicketFieldUpdate {
	return domain.TicketFieldUpdate{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Type:        r.Type,
		Status:      r.Status,
	}
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AssignTicketRequest payload. An empty SupportUserID assigns the caller.
type AssignTicketRequest struct {
	SupportUserID *string `json:"supportUserId"`
}

// UserSummaryResponse is the embedded user projection.
type UserSummaryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	Type        domain.TicketType     `json:"type"`
	CreatorID   string                `json:"creatorId"`
	CompanyID   *string               `json:"companyId"`
	AssigneeID  *string               `json:"assigneeId"`
	Creator     *UserSummaryResponse  `json:"creator"`
	Assignee    *UserSummaryResponse  `json:"assignee"`
	Comments    *[]CommentResponse    `json:"comments,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// TicketStatusSummary is returned by the status endpoint.
type TicketStatusSummary struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	Status    domain.TicketStatus `json:"status"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// TicketStatusResponse wraps a status change.
type TicketStatusResponse struct {
	Message string              `json:"message"`
	Ticket  TicketStatusSummary `json:"ticket"`
}

// TicketFilters echoes the raw list filters, null when absent.
type TicketFilters struct {
	Status         *string `json:"status"`
	Priority       *string `json:"priority"`
	Type           *string `json:"type"`
	AssignedToUUID *string `json:"assignedToUuid"`
	Search         *string `json:"search"`
}

// PaginationResponse describes one page.
type PaginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// TicketListResponse carries either Count or Pagination.
type TicketListResponse struct {
	Tickets    []TicketResponse    `json:"tickets"`
	Count      *int                `json:"count,omitempty"`
	Pagination *PaginationResponse `json:"pagination,omitempty"`
	Filters    *TicketFilters      `json:"filters,omitempty"`
}

// NewTicketResponse projects a ticket. Comments are only rendered when loaded.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		Type:        t.Type,
		CreatorID:   t.CreatorID,
		CompanyID:   t.CompanyID,
		AssigneeID:  t.AssigneeID,
		Creator:     userSummary(t.Creator),
		Assignee:    userSummary(t.Assignee),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Comments != nil {
		comments := NewCommentResponses(t.Comments)
		resp.Comments = &comments
	}
	return resp
}

// NewTicketResponses projects a slice, never returning nil.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}

// NewTicketStatusResponse projects a status change.
func NewTicketStatusResponse(t *domain.Ticket) TicketStatusResponse {
	return TicketStatusResponse{
		Message: fmt.Sprintf("Ticket status updated to %s", t.Status),
		Ticket:  TicketStatusSummary{ID: t.ID, Title: t.Title, Status: t.Status, UpdatedAt: t.UpdatedAt},
	}
}

// NewTicketListResponse projects a listing result.
func NewTicketListResponse(res *service.TicketListResult) TicketListResponse {
	resp := TicketListResponse{
		Tickets: NewTicketResponses(res.Tickets),
		Filters: &TicketFilters{
			Status:         optional(res.Filters.Status),
			Priority:       optional(res.Filters.Priority),
			Type:           optional(res.Filters.Type),
			AssignedToUUID: optional(res.Filters.AssignedTo),
			Search:         optional(res.Filters.Search),
		},
	}
	if res.Pagination != nil {
		resp.Pagination = &PaginationResponse{
			Page:       res.Pagination.Page,
			Limit:      res.Pagination.Limit,
			Total:      res.Pagination.Total,
			TotalPages: res.Pagination.TotalPages,
		}
	} else {
		count := res.Count
		resp.Count = &count
	}
	return resp
}

// NewAssignedListResponse projects the my-tickets listing.
func NewAssignedListResponse(tickets []domain.Ticket) TicketListResponse {
	count := len(tickets)
	return TicketListResponse{Tickets: NewTicketResponses(tickets), Count: &count}
}

func userSummary(u *domain.UserSummary) *UserSummaryResponse {
	if u == nil {
		return nil
	}
	return &UserSummaryResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
