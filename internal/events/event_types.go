package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketUnassigned    EventType = "ticket_unassigned"
	EventCommentAdded        EventType = "comment_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, ticketID string, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CompanyID *string               `json:"company_id,omitempty"`
	Priority  domain.TicketPriority `json:"priority"`
	Type      domain.TicketType     `json:"type"`
	Title     string                `json:"title"`
}

// TicketUpdatedPayload lists the fields an update touched.
type TicketUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload. Status is the status after the automatic
// transition, if any.
type TicketAssignedPayload struct {
	AssigneeID         *string             `json:"assignee_id,omitempty"`
	PreviousAssigneeID *string             `json:"previous_assignee_id,omitempty"`
	Status             domain.TicketStatus `json:"status"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID      string `json:"comment_id"`
	IsInternal     bool   `json:"is_internal"`
	ContentPreview string `json:"content_preview"`
}
