package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// TicketType classifies what the requester is asking for.
type TicketType string

const (
	TicketTypeBug               TicketType = "bug"
	TicketTypeSupportRequest    TicketType = "support_request"
	TicketTypeRequest           TicketType = "request"
	TicketTypeFeatureSuggestion TicketType = "feature_suggestion"
)

var (
	TicketStatuses   = []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed}
	TicketPriorities = []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh}
	TicketTypes      = []TicketType{TicketTypeBug, TicketTypeSupportRequest, TicketTypeRequest, TicketTypeFeatureSuggestion}
)

// statusAliases maps accepted spellings (lower-cased) onto canonical statuses.
var statusAliases = map[string]TicketStatus{
	"open":        TicketStatusOpen,
	"in_progress": TicketStatusInProgress,
	"in-progress": TicketStatusInProgress,
	"inprogress":  TicketStatusInProgress,
	"progress":    TicketStatusInProgress,
	"closed":      TicketStatusClosed,
	"close":       TicketStatusClosed,
	"finished":    TicketStatusClosed,
	"done":        TicketStatusClosed,
}

// ErrNoFieldUpdates is returned when an update carries no fields at all.
var ErrNoFieldUpdates = errors.New("no valid fields to update")

// InvalidValueError reports input outside an enumerated set.
type InvalidValueError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s %q. Must be: %s", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// FieldErrors collects per-field validation failures.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return strings.Join(parts, "; ")
}

// NormalizeStatus maps raw input, including known synonyms, onto a canonical status.
func NormalizeStatus(raw string) (TicketStatus, error) {
	clean := strings.ToLower(strings.TrimSpace(raw))
	if status, ok := statusAliases[clean]; ok {
		return status, nil
	}
	return "", &InvalidValueError{Field: "status", Value: raw, Allowed: statusStrings()}
}

// ParsePriority validates a priority value.
func ParsePriority(raw string) (TicketPriority, error) {
	clean := TicketPriority(strings.ToLower(strings.TrimSpace(raw)))
	for _, p := range TicketPriorities {
		if p == clean {
			return p, nil
		}
	}
	allowed := make([]string, 0, len(TicketPriorities))
	for _, p := range TicketPriorities {
		allowed = append(allowed, string(p))
	}
	return "", &InvalidValueError{Field: "priority", Value: raw, Allowed: allowed}
}

// ParseType validates a ticket type value.
func ParseType(raw string) (TicketType, error) {
	clean := TicketType(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range TicketTypes {
		if t == clean {
			return t, nil
		}
	}
	allowed := make([]string, 0, len(TicketTypes))
	for _, t := range TicketTypes {
		allowed = append(allowed, string(t))
	}
	return "", &InvalidValueError{Field: "type", Value: raw, Allowed: allowed}
}

func statusStrings() []string {
	out := make([]string, 0, len(TicketStatuses))
	for _, s := range TicketStatuses {
		out = append(out, string(s))
	}
	return out
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Priority    TicketPriority
	Status      TicketStatus
	Type        TicketType
	CreatorID   string
	CompanyID   *string
	AssigneeID  *string
	Creator     *UserSummary
	Assignee    *UserSummary
	Comments    []TicketComment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTicket builds an open ticket owned by creator. The company is copied
// from the creator here and never re-derived.
func NewTicket(creator *User, title, description string, priority TicketPriority, ticketType TicketType) *Ticket {
	if priority == "" {
		priority = TicketPriorityMedium
	}
	if ticketType == "" {
		ticketType = TicketTypeSupportRequest
	}
	ticket := &Ticket{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Priority:    priority,
		Status:      TicketStatusOpen,
		Type:        ticketType,
		CreatorID:   creator.ID,
	}
	if creator.CompanyID != nil {
		companyID := *creator.CompanyID
		ticket.CompanyID = &companyID
	}
	return ticket
}

// Assign sets the assignee and moves an open ticket to in_progress.
func (t *Ticket) Assign(assigneeID string) {
	t.AssigneeID = &assigneeID
	if t.Status == TicketStatusOpen {
		t.Status = TicketStatusInProgress
	}
}

// Unassign clears the assignee and moves an in_progress ticket back to open.
func (t *Ticket) Unassign() {
	t.AssigneeID = nil
	t.Assignee = nil
	if t.Status == TicketStatusInProgress {
		t.Status = TicketStatusOpen
	}
}

// TicketFieldUpdate is a raw partial update; nil means "not supplied".
type TicketFieldUpdate struct {
	Title       *string
	Description *string
	Priority    *string
	Type        *string
	Status      *string
}

// TicketChanges is a validated TicketFieldUpdate.
type TicketChanges struct {
	Title       *string
	Description *string
	Priority    *TicketPriority
	Type        *TicketType
	Status      *TicketStatus
}

// TouchesContent reports whether any creator-editable field is present.
func (u TicketFieldUpdate) TouchesContent() bool {
	return u.Title != nil || u.Description != nil || u.Priority != nil || u.Type != nil
}

// Validate checks every supplied field before anything is applied.
func (u TicketFieldUpdate) Validate() (TicketChanges, error) {
	var changes TicketChanges
	problems := FieldErrors{}
	present := 0

	if u.Title != nil {
		present++
		if v := strings.TrimSpace(*u.Title); v != "" {
			changes.Title = &v
		} else {
			problems["title"] = "must not be empty"
		}
	}
	if u.Description != nil {
		present++
		if v := strings.TrimSpace(*u.Description); v != "" {
			changes.Description = &v
		} else {
			problems["description"] = "must not be empty"
		}
	}
	if u.Priority != nil {
		present++
		if p, err := ParsePriority(*u.Priority); err == nil {
			changes.Priority = &p
		} else {
			problems["priority"] = err.Error()
		}
	}
	if u.Type != nil {
		present++
		if tt, err := ParseType(*u.Type); err == nil {
			changes.Type = &tt
		} else {
			problems["type"] = err.Error()
		}
	}
	if u.Status != nil {
		present++
		if s, err := NormalizeStatus(*u.Status); err == nil {
			changes.Status = &s
		} else {
			problems["status"] = err.Error()
		}
	}

	if present == 0 {
		return TicketChanges{}, ErrNoFieldUpdates
	}
	if len(problems) > 0 {
		return TicketChanges{}, problems
	}
	return changes, nil
}

// Apply writes validated changes onto the ticket.
func (t *Ticket) Apply(c TicketChanges) {
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.Priority != nil {
		t.Priority = *c.Priority
	}
	if c.Type != nil {
		t.Type = *c.Type
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
}
