package domain

import "time"

// TicketComment captures a message in a ticket thread. Internal comments
// are support-only notes.
type TicketComment struct {
	ID         string
	TicketID   string
	AuthorID   string
	Content    string
	IsInternal bool
	Author     *UserSummary
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// VisibleTo filters comments for a reader role, keeping order.
func VisibleTo(role Role, comments []TicketComment) []TicketComment {
	if role == RoleSupport {
		return comments
	}
	visible := make([]TicketComment, 0, len(comments))
	for _, c := range comments {
		if c.IsInternal {
			continue
		}
		visible = append(visible, c)
	}
	return visible
}

// CanSeeInternal reports whether a role may read or write internal comments.
func CanSeeInternal(role Role) bool {
	return role == RoleSupport
}
