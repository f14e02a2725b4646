package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// CompanyService manages companies and their members.
type CompanyService struct {
	companies repository.CompanyRepository
	users     repository.UserRepository
}

// NewCompanyService constructs the service.
func NewCompanyService(companies repository.CompanyRepository, users repository.UserRepository) *CompanyService {
	return &CompanyService{companies: companies, users: users}
}

// CompanyUpdateInput is a partial company update. A TaxID pointing at ""
// clears the stored tax id.
type CompanyUpdateInput struct {
	Name  *string
	TaxID *string
}

// CreateCompany registers a company. Support only.
func (s *CompanyService) CreateCompany(ctx context.Context, actor auth.Subject, name string, taxID *string) (*domain.Company, error) {
	if err := auth.Authorize(actor, auth.OpCompanyCreate, auth.Resource{}); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("company name is required", map[string]any{"name": "is required"})
	}

	company := &domain.Company{Name: name, TaxID: normalizeTaxID(taxID), Users: []domain.UserSummary{}}
	if company.TaxID != nil {
		if err := s.ensureTaxIDFree(ctx, *company.TaxID, ""); err != nil {
			return nil, err
		}
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, taxIDConflict(err)
	}
	return company, nil
}

// ListCompanies returns every company, newest first, with its users.
func (s *CompanyService) ListCompanies(ctx context.Context, actor auth.Subject) ([]domain.Company, error) {
	if err := auth.Authorize(actor, auth.OpCompanyList, auth.Resource{}); err != nil {
		return nil, err
	}
	companies, err := s.companies.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(companies) == 0 {
		return []domain.Company{}, nil
	}

	ids := make([]string, 0, len(companies))
	for _, c := range companies {
		ids = append(ids, c.ID)
	}
	members, err := s.users.ListByCompanies(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range companies {
		companies[i].Users = members[companies[i].ID]
		if companies[i].Users == nil {
			companies[i].Users = []domain.UserSummary{}
		}
	}
	return companies, nil
}

// GetCompany returns a company with its users. Clients are checked before
// the lookup, so a foreign id is forbidden even if it does not exist.
func (s *CompanyService) GetCompany(ctx context.Context, actor auth.Subject, id string) (*domain.Company, error) {
	if err := auth.Authorize(actor, auth.OpCompanyRead, auth.CompanyResource(id)); err != nil {
		return nil, err
	}
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "company", map[string]any{"company_id": id})
	}
	members, err := s.users.ListByCompanies(ctx, []string{company.ID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	company.Users = members[company.ID]
	if company.Users == nil {
		company.Users = []domain.UserSummary{}
	}
	return company, nil
}

// UpdateCompany applies a partial update.
func (s *CompanyService) UpdateCompany(ctx context.Context, actor auth.Subject, id string, input CompanyUpdateInput) (*domain.Company, error) {
	if err := auth.Authorize(actor, auth.OpCompanyUpdate, auth.CompanyResource(id)); err != nil {
		return nil, err
	}
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "company", map[string]any{"company_id": id})
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("company name must not be empty", map[string]any{"name": "must not be empty"})
		}
		company.Name = name
	}
	if input.TaxID != nil {
		company.TaxID = normalizeTaxID(input.TaxID)
		if company.TaxID != nil {
			if err := s.ensureTaxIDFree(ctx, *company.TaxID, company.ID); err != nil {
				return nil, err
			}
		}
	}

	if err := s.companies.Update(ctx, company); err != nil {
		if apperrors.IsNoRows(err) {
			return nil, apperrors.NewNotFound("company", map[string]any{"company_id": id})
		}
		return nil, taxIDConflict(err)
	}
	return company, nil
}

// DeleteCompany removes a company that no user references.
func (s *CompanyService) DeleteCompany(ctx context.Context, actor auth.Subject, id string) error {
	if err := auth.Authorize(actor, auth.OpCompanyDelete, auth.CompanyResource(id)); err != nil {
		return err
	}
	if _, err := s.companies.GetByID(ctx, id); err != nil {
		return lookupError(err, "company", map[string]any{"company_id": id})
	}
	count, err := s.users.CountByCompany(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if count > 0 {
		return apperrors.NewConflict(
			fmt.Sprintf("cannot delete company: %d users are still associated", count),
			map[string]any{"users": count},
		)
	}
	if err := s.companies.Delete(ctx, id); err != nil {
		return lookupError(err, "company", map[string]any{"company_id": id})
	}
	return nil
}

// AssignUser moves a user into the company.
func (s *CompanyService) AssignUser(ctx context.Context, actor auth.Subject, companyID, userID string) (*domain.User, error) {
	if err := auth.Authorize(actor, auth.OpCompanyAssignUser, auth.CompanyResource(companyID)); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewValidationError("userId is required", map[string]any{"userId": "is required"})
	}
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, lookupError(err, "company", map[string]any{"company_id": companyID})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "user", map[string]any{"user_id": userID})
	}
	if err := s.users.SetCompany(ctx, user.ID, &company.ID); err != nil {
		return nil, lookupError(err, "user", map[string]any{"user_id": userID})
	}
	id := company.ID
	user.CompanyID = &id
	return user, nil
}

func (s *CompanyService) ensureTaxIDFree(ctx context.Context, taxID, selfID string) error {
	existing, err := s.companies.GetByTaxID(ctx, taxID)
	if err != nil {
		if apperrors.IsNoRows(err) {
			return nil
		}
		return apperrors.MapError(err)
	}
	if existing.ID != selfID {
		return apperrors.NewConflict("company with this tax id already exists", map[string]any{"taxId": taxID})
	}
	return nil
}

func taxIDConflict(err error) error {
	if apperrors.IsUniqueViolation(err) {
		return apperrors.NewConflict("company with this tax id already exists", nil)
	}
	return apperrors.MapError(err)
}

func normalizeTaxID(taxID *string) *string {
	if taxID == nil {
		return nil
	}
	clean := strings.TrimSpace(*taxID)
	if clean == "" {
		return nil
	}
	return &clean
}
