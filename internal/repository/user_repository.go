package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// UserRepository defines persistence access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	SetCompany(ctx context.Context, userID string, companyID *string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByCompanies(ctx context.Context, companyIDs []string) (map[string][]domain.UserSummary, error)
	CountByCompany(ctx context.Context, companyID string) (int, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, role, password_hash, company_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.Role,
		user.PasswordHash,
		user.CompanyID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) SetCompany(ctx context.Context, userID string, companyID *string) error {
	const query = `UPDATE users SET company_id=$1, updated_at=NOW() WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, companyID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, role, password_hash, company_id, created_at, updated_at
        FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, role, password_hash, company_id, created_at, updated_at
        FROM users WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.PasswordHash,
		&user.CompanyID,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListByCompanies(ctx context.Context, companyIDs []string) (map[string][]domain.UserSummary, error) {
	result := make(map[string][]domain.UserSummary, len(companyIDs))
	if len(companyIDs) == 0 {
		return result, nil
	}

	const query = `
        SELECT company_id, id, name, email, role
        FROM users WHERE company_id = ANY($1::uuid[])
        ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query, companyIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var companyID string
		var summary domain.UserSummary
		if err := rows.Scan(&companyID, &summary.ID, &summary.Name, &summary.Email, &summary.Role); err != nil {
			return nil, err
		}
		result[companyID] = append(result[companyID], summary)
	}
	return result, rows.Err()
}

func (r *userRepository) CountByCompany(ctx context.Context, companyID string) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE company_id=$1`
	var count int
	if err := r.pool.QueryRow(ctx, query, companyID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
