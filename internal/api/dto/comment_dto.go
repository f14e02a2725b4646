package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content    string `json:"content" validate:"required"`
	IsInternal bool   `json:"isInternal"`
}

// UpdateCommentRequest payload.
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// CommentAuthorResponse is the author projection on a comment.
type CommentAuthorResponse struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}

// CommentResponse represents a thread comment.
type CommentResponse struct {
	ID         string                 `json:"id"`
	Content    string                 `json:"content"`
	IsInternal bool                   `json:"isInternal"`
	TicketID   string                 `json:"ticketId"`
	AuthorID   string                 `json:"authorId"`
	Author     *CommentAuthorResponse `json:"author"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewCommentResponse projects a comment.
func NewCommentResponse(c *domain.TicketComment) CommentResponse {
	resp := CommentResponse{
		ID:         c.ID,
		Content:    c.Content,
		IsInternal: c.IsInternal,
		TicketID:   c.TicketID,
		AuthorID:   c.AuthorID,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.Author != nil {
		resp.Author = &CommentAuthorResponse{ID: c.Author.ID, Name: c.Author.Name, Role: c.Author.Role}
	}
	return resp
}

// NewCommentResponses projects a slice, never returning nil.
func NewCommentResponses(comments []domain.TicketComment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, NewCommentResponse(&comments[i]))
	}
	return out
}
