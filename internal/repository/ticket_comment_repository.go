package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketCommentRepository manages ticket thread comments.
type TicketCommentRepository interface {
	Create(ctx context.Context, comment *domain.TicketComment) error
	Update(ctx context.Context, comment *domain.TicketComment) error
	Delete(ctx context.Context, ticketID, commentID string) error
	GetByID(ctx context.Context, ticketID, commentID string) (*domain.TicketComment, error)
	ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.TicketComment, error)
}

type ticketCommentRepository struct {
	pool *pgxpool.Pool
}

// NewTicketCommentRepository builds repository.
func NewTicketCommentRepository(pool *pgxpool.Pool) TicketCommentRepository {
	return &ticketCommentRepository{pool: pool}
}

const commentSelect = `
        SELECT m.id, m.ticket_id, m.author_id, m.content, m.is_internal, m.created_at, m.updated_at,
               u.name, u.email, u.role
        FROM ticket_comments m
        LEFT JOIN users u ON u.id = m.author_id`

func (r *ticketCommentRepository) Create(ctx context.Context, comment *domain.TicketComment) error {
	const query = `
        INSERT INTO ticket_comments (ticket_id, author_id, content, is_internal)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.AuthorID,
		comment.Content,
		comment.IsInternal,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
}

func (r *ticketCommentRepository) Update(ctx context.Context, comment *domain.TicketComment) error {
	const query = `
        UPDATE ticket_comments SET content=$1, updated_at=NOW()
        WHERE id=$2 AND ticket_id=$3
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, comment.Content, comment.ID, comment.TicketID).Scan(&comment.UpdatedAt)
}

func (r *ticketCommentRepository) Delete(ctx context.Context, ticketID, commentID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM ticket_comments WHERE id=$1 AND ticket_id=$2`, commentID, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketCommentRepository) GetByID(ctx context.Context, ticketID, commentID string) (*domain.TicketComment, error) {
	rows, err := r.pool.Query(ctx, commentSelect+` WHERE m.id=$1 AND m.ticket_id=$2`, commentID, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments, err := scanComments(rows)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &comments[0], nil
}

func (r *ticketCommentRepository) ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.TicketComment, error) {
	query := commentSelect + ` WHERE m.ticket_id=$1`
	if !includeInternal {
		query += ` AND m.is_internal = FALSE`
	}
	query += ` ORDER BY m.created_at ASC`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComments(rows)
}

func scanComments(rows pgx.Rows) ([]domain.TicketComment, error) {
	var result []domain.TicketComment
	for rows.Next() {
		var (
			comment     domain.TicketComment
			name, email *string
			role        *domain.Role
		)
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.AuthorID,
			&comment.Content,
			&comment.IsInternal,
			&comment.CreatedAt,
			&comment.UpdatedAt,
			&name,
			&email,
			&role,
		); err != nil {
			return nil, err
		}
		comment.Author = joinedSummary(comment.AuthorID, name, email, role)
		result = append(result, comment)
	}
	return result, rows.Err()
}
