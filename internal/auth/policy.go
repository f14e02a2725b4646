package auth

import (
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Operation names an action checked by Authorize.
type Operation string

const (
	OpCompanyCreate     Operation = "company:create"
	OpCompanyList       Operation = "company:list"
	OpCompanyRead       Operation = "company:read"
	OpCompanyUpdate     Operation = "company:update"
	OpCompanyDelete     Operation = "company:delete"
	OpCompanyAssignUser Operation = "company:assign_user"

	OpTicketCreate       Operation = "ticket:create"
	OpTicketRead         Operation = "ticket:read"
	OpTicketUpdateFields Operation = "ticket:update_fields"
	OpTicketUpdateStatus Operation = "ticket:update_status"
	OpTicketAssign       Operation = "ticket:assign"
	OpTicketUnassign     Operation = "ticket:unassign"
	OpTicketListAssigned Operation = "ticket:list_assigned"

	OpCommentCreate Operation = "comment:create"
	OpCommentRead   Operation = "comment:read"
	OpCommentUpdate Operation = "comment:update"
	OpCommentDelete Operation = "comment:delete"
)

// Subject is the caller as seen by the policy.
type Subject struct {
	UserID    string
	Role      domain.Role
	CompanyID *string
}

// SubjectFromUser projects a stored user onto a Subject.
func SubjectFromUser(u *domain.User) Subject {
	if u == nil {
		return Subject{}
	}
	return Subject{UserID: u.ID, Role: u.Role, CompanyID: u.CompanyID}
}

// IsSupport reports whether the subject is support staff.
func (s Subject) IsSupport() bool {
	return s.Role == domain.RoleSupport
}

// Resource carries the ownership facts a decision needs. For comment
// update/delete OwnerID is the comment author; for ticket operations it is
// the ticket creator.
type Resource struct {
	CompanyID *string
	OwnerID   string
}

// TicketResource describes a ticket for Authorize.
func TicketResource(t *domain.Ticket) Resource {
	return Resource{CompanyID: t.CompanyID, OwnerID: t.CreatorID}
}

// CompanyResource describes a company id for Authorize.
func CompanyResource(companyID string) Resource {
	return Resource{CompanyID: &companyID}
}

// SameCompany is true only when both ids are present and equal.
func SameCompany(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}

// Authorize decides whether subject may perform op on res. It never touches
// storage; a denial is a FORBIDDEN DomainError.
func Authorize(subject Subject, op Operation, res Resource) error {
	if allowed(subject, op, res) {
		return nil
	}
	return apperrors.NewForbidden(denialMessage(op))
}

func allowed(s Subject, op Operation, res Resource) bool {
	if !s.Role.IsValid() {
		return false
	}

	switch op {
	case OpCompanyCreate, OpCompanyList, OpCompanyUpdate, OpCompanyDelete, OpCompanyAssignUser:
		return s.IsSupport()
	case OpCompanyRead:
		return s.IsSupport() || SameCompany(s.CompanyID, res.CompanyID)
	case OpTicketCreate:
		return true
	case OpTicketRead, OpCommentCreate, OpCommentRead:
		return s.IsSupport() || SameCompany(s.CompanyID, res.CompanyID)
	case OpTicketUpdateFields, OpCommentUpdate, OpCommentDelete:
		return s.IsSupport() || (s.UserID != "" && s.UserID == res.OwnerID)
	case OpTicketUpdateStatus, OpTicketAssign, OpTicketUnassign, OpTicketListAssigned:
		return s.IsSupport()
	default:
		return false
	}
}

func denialMessage(op Operation) string {
	switch op {
	case OpCompanyRead:
		return "you can only view your own company"
	case OpTicketRead, OpCommentCreate, OpCommentRead:
		return "you do not have access to this ticket"
	case OpTicketUpdateFields:
		return "only support or the ticket creator can update this ticket"
	case OpTicketUpdateStatus:
		return "only support can change ticket status"
	case OpCommentUpdate:
		return "you can only edit your own comments"
	case OpCommentDelete:
		return "you can only delete your own comments"
	default:
		return "insufficient permissions"
	}
}

// TicketListScope returns the company restriction for listing tickets.
// Support gets nil (every company). A client without a company matches
// nothing, reported by ok=false.
func TicketListScope(s Subject) (companyID *string, ok bool) {
	if s.IsSupport() {
		return nil, true
	}
	if s.CompanyID == nil {
		return nil, false
	}
	id := *s.CompanyID
	return &id, true
}
