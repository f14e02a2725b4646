package domain

import "time"

// User is either a company client or a support agent.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CompanyID    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsSupport reports whether the user belongs to support staff.
func (u *User) IsSupport() bool {
	return u != nil && u.Role == RoleSupport
}

// UserSummary is the public projection embedded in tickets.
type UserSummary struct {
	ID    string
	Name  string
	Email string
	Role  Role
}
