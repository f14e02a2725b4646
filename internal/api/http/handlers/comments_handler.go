package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// CommentsHandler manages the comment thread of a ticket.
type CommentsHandler struct {
	service *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{service: commentService}
}

// AddComment POST /tickets/:ticketId/comments.
func (h *CommentsHandler) AddComment(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "ticketId", "ticket")
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	comment, err := h.service.AddComment(c.UserContext(), p.Subject(), ticketID, req.Content, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewCommentResponse(comment))
}

// ListComments GET /tickets/:ticketId/comments.
func (h *CommentsHandler) ListComments(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "ticketId", "ticket")
	if err != nil {
		return err
	}

	comments, err := h.service.ListComments(c.UserContext(), p.Subject(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCommentResponses(comments))
}

// UpdateComment PUT /tickets/:ticketId/comments/:commentId.
func (h *CommentsHandler) UpdateComment(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "ticketId", "ticket")
	if err != nil {
		return err
	}
	commentID, err := pathID(c, "commentId", "comment")
	if err != nil {
		return err
	}
	var req dto.UpdateCommentRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	comment, err := h.service.UpdateComment(c.UserContext(), p.Subject(), ticketID, commentID, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCommentResponse(comment))
}

// DeleteComment DELETE /tickets/:ticketId/comments/:commentId.
func (h *CommentsHandler) DeleteComment(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "ticketId", "ticket")
	if err != nil {
		return err
	}
	commentID, err := pathID(c, "commentId", "comment")
	if err != nil {
		return err
	}

	if err := h.service.DeleteComment(c.UserContext(), p.Subject(), ticketID, commentID); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Comment deleted successfully"})
}
