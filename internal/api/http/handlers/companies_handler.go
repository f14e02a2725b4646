package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// CompaniesHandler manages company endpoints.
type CompaniesHandler struct {
	service *service.CompanyService
}

// NewCompaniesHandler constructs handler.
func NewCompaniesHandler(companyService *service.CompanyService) *CompaniesHandler {
	return &CompaniesHandler{service: companyService}
}

// CreateCompany POST /companies.
func (h *CompaniesHandler) CreateCompany(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateCompanyRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	company, err := h.service.CreateCompany(c.UserContext(), p.Subject(), req.Name, req.TaxID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewCompanyResponse(company))
}

// ListCompanies GET /companies.
func (h *CompaniesHandler) ListCompanies(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	companies, err := h.service.ListCompanies(c.UserContext(), p.Subject())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCompanyResponses(companies))
}

// GetCompany GET /companies/:id.
func (h *CompaniesHandler) GetCompany(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "company")
	if err != nil {
		return err
	}

	company, err := h.service.GetCompany(c.UserContext(), p.Subject(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCompanyResponse(company))
}

// UpdateCompany PUT /companies/:id.
func (h *CompaniesHandler) UpdateCompany(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "company")
	if err != nil {
		return err
	}
	var req dto.UpdateCompanyRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	company, err := h.service.UpdateCompany(c.UserContext(), p.Subject(), id, service.CompanyUpdateInput{
		Name:  req.Name,
		TaxID: req.TaxID,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCompanyResponse(company))
}

// DeleteCompany DELETE /companies/:id.
func (h *CompaniesHandler) DeleteCompany(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "company")
	if err != nil {
		return err
	}

	if err := h.service.DeleteCompany(c.UserContext(), p.Subject(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Company deleted successfully"})
}

// AssignUser POST /companies/:id/assign-user.
func (h *CompaniesHandler) AssignUser(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "company")
	if err != nil {
		return err
	}
	var req dto.AssignUserRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	userID := strings.TrimSpace(req.UserID)
	if userID != "" && !isUUID(userID) {
		return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
	}

	user, err := h.service.AssignUser(c.UserContext(), p.Subject(), id, userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAssignUserResponse(user))
}
