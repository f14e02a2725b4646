package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), p.User, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Type:        req.Type,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewTicketResponse(ticket))
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	query, err := parseTicketListQuery(c)
	if err != nil {
		return err
	}

	result, err := h.service.ListTickets(c.UserContext(), p.Subject(), query)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketListResponse(result))
}

// MyTickets GET /tickets/my-tickets.
func (h *TicketsHandler) MyTickets(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListAssignedToMe(c.UserContext(), p.Subject())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAssignedListResponse(tickets))
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "ticket")
	if err != nil {
		return err
	}

	ticket, err := h.service.GetTicket(c.UserContext(), p.Subject(), id, c.QueryBool("includeComments", false))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "ticket")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	ticket, err := h.service.UpdateTicket(c.UserContext(), p.Subject(), id, req.FieldUpdate())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "ticket")
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	ticket, err := h.service.UpdateStatus(c.UserContext(), p.Subject(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketStatusResponse(ticket))
}

// AssignTicket PATCH /tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "ticket")
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	supportUserID := ""
	if req.SupportUserID != nil {
		supportUserID = strings.TrimSpace(*req.SupportUserID)
	}
	if supportUserID != "" && !isUUID(supportUserID) {
		return apperrors.NewNotFound("user", map[string]any{"user_id": supportUserID})
	}

	ticket, err := h.service.AssignTicket(c.UserContext(), p.Subject(), id, supportUserID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// UnassignTicket PATCH /tickets/:id/unassign.
func (h *TicketsHandler) UnassignTicket(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "ticket")
	if err != nil {
		return err
	}

	ticket, err := h.service.UnassignTicket(c.UserContext(), p.Subject(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

func parseTicketListQuery(c *fiber.Ctx) (service.TicketListQuery, error) {
	query := service.TicketListQuery{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		Type:       c.Query("type"),
		AssignedTo: c.Query("assignedToUuid"),
		Search:     c.Query("search"),
	}
	var err error
	if query.Page, err = queryInt(c, "page"); err != nil {
		return query, err
	}
	if query.Limit, err = queryInt(c, "limit"); err != nil {
		return query, err
	}
	return query, nil
}

func queryInt(c *fiber.Ctx, key string) (*int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return nil, apperrors.NewValidationError(key+" must be a positive integer", map[string]any{key: raw})
	}
	return &v, nil
}
