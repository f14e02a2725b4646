package dto

import (
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=client support"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse is returned after registration.
type RegisterResponse struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
}

// SessionUser is the user block of a login response.
type SessionUser struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	CompanyID *string     `json:"companyId"`
}

// LoginResponse standard response for login.
type LoginResponse struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// NewRegisterResponse projects a freshly created user.
func NewRegisterResponse(u *domain.User) RegisterResponse {
	return RegisterResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// NewLoginResponse projects a session.
func NewLoginResponse(u *domain.User, token string) LoginResponse {
	return LoginResponse{
		Token: token,
		User:  SessionUser{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, CompanyID: u.CompanyID},
	}
}
