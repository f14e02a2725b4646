package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateCompanyRequest payload.
type CreateCompanyRequest struct {
	Name  string  `json:"name" validate:"required,max=255"`
	TaxID *string `json:"taxId" validate:"omitempty,max=32"`
}

// UpdateCompanyRequest is a partial update. taxId "" clears the value.
type UpdateCompanyRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=255"`
	TaxID *string `json:"taxId" validate:"omitempty,max=32"`
}

// AssignUserRequest payload.
type AssignUserRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// CompanyUserResponse is a member listed under a company.
type CompanyUserResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// CompanyResponse represents a company.
type CompanyResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	TaxID     *string               `json:"taxId"`
	Users     []CompanyUserResponse `json:"users"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// AssignedUserResponse is the user block after assignment.
type AssignedUserResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	CompanyID *string `json:"companyId"`
}

// AssignUserResponse wraps an assignment.
type AssignUserResponse struct {
	Message string               `json:"message"`
	User    AssignedUserResponse `json:"user"`
}

// NewCompanyResponse projects a company.
func NewCompanyResponse(c *domain.Company) CompanyResponse {
	users := make([]CompanyUserResponse, 0, len(c.Users))
	for _, u := range c.Users {
		users = append(users, CompanyUserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
	}
	return CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Users:     users,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewCompanyResponses projects a slice, never returning nil.
func NewCompanyResponses(companies []domain.Company) []CompanyResponse {
	out := make([]CompanyResponse, 0, len(companies))
	for i := range companies {
		out = append(out, NewCompanyResponse(&companies[i]))
	}
	return out
}

// NewAssignUserResponse projects an assignment.
func NewAssignUserResponse(u *domain.User) AssignUserResponse {
	return AssignUserResponse{
		Message: "user assigned to company successfully",
		User:    AssignedUserResponse{ID: u.ID, Name: u.Name, Email: u.Email, CompanyID: u.CompanyID},
	}
}
