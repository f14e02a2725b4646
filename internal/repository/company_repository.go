package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CompanyRepository manages companies.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	Update(ctx context.Context, company *domain.Company) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	GetByTaxID(ctx context.Context, taxID string) (*domain.Company, error)
	List(ctx context.Context) ([]domain.Company, error)
}

type companyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository builds repository.
func NewCompanyRepository(pool *pgxpool.Pool) CompanyRepository {
	return &companyRepository{pool: pool}
}

func (r *companyRepository) Create(ctx context.Context, company *domain.Company) error {
	const query = `
        INSERT INTO companies (name, tax_id)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, company.Name, company.TaxID).
		Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
}

func (r *companyRepository) Update(ctx context.Context, company *domain.Company) error {
	const query = `
        UPDATE companies SET name=$1, tax_id=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, company.Name, company.TaxID, company.ID).Scan(&company.UpdatedAt)
}

func (r *companyRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *companyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	const query = `SELECT id, name, tax_id, created_at, updated_at FROM companies WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *companyRepository) GetByTaxID(ctx context.Context, taxID string) (*domain.Company, error) {
	const query = `SELECT id, name, tax_id, created_at, updated_at FROM companies WHERE tax_id=$1`
	return r.fetchSingle(ctx, query, taxID)
}

func (r *companyRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Company, error) {
	var company domain.Company
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&company.ID,
		&company.Name,
		&company.TaxID,
		&company.CreatedAt,
		&company.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) List(ctx context.Context) ([]domain.Company, error) {
	const query = `
        SELECT id, name, tax_id, created_at, updated_at
        FROM companies ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Company
	for rows.Next() {
		var company domain.Company
		if err := rows.Scan(
			&company.ID,
			&company.Name,
			&company.TaxID,
			&company.CreatedAt,
			&company.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, company)
	}
	return result, rows.Err()
}
