package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketFilter captures list parameters. A nil CompanyID means every company.
type TicketFilter struct {
	CompanyID  *string
	AssigneeID *string
	Unassigned bool
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	Type       *domain.TicketType
	SearchTerm *string
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Count(ctx context.Context, filter TicketFilter) (int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketSelect = `
        SELECT t.id, t.title, t.description, t.priority, t.status, t.type,
               t.creator_id, t.company_id, t.assignee_id, t.created_at, t.updated_at,
               c.name, c.email, c.role, a.name, a.email, a.role
        FROM tickets t
        LEFT JOIN users c ON c.id = t.creator_id
        LEFT JOIN users a ON a.id = t.assignee_id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, priority, status, type, creator_id, company_id, assignee_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.Type,
		ticket.CreatorID,
		ticket.CompanyID,
		ticket.AssigneeID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

// Update persists mutable fields. company_id is intentionally absent.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, priority=$3, status=$4, type=$5,
            assignee_id=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.Type,
		ticket.AssigneeID,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, ticketSelect+` WHERE t.id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &tickets[0], nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	where, args := buildTicketWhere(filter)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.created_at DESC`, ticketSelect, where)
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query = fmt.Sprintf(`%s LIMIT %d OFFSET %d`, query, filter.Limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Count(ctx context.Context, filter TicketFilter) (int, error) {
	where, args := buildTicketWhere(filter)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets t WHERE `+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func buildTicketWhere(filter TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		clauses = append(clauses, fmt.Sprintf("t.company_id=$%d", len(args)))
	}
	if filter.Unassigned {
		clauses = append(clauses, "t.assignee_id IS NULL")
	} else if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("t.assignee_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("t.priority=$%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("t.type=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, searchPattern(*filter.SearchTerm))
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(`(LOWER(t.title) LIKE %s ESCAPE '\' OR LOWER(t.description) LIKE %s ESCAPE '\')`, placeholder, placeholder))
	}
	return strings.Join(clauses, " AND "), args
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// searchPattern builds a case-insensitive substring pattern for LIKE.
func searchPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var (
			ticket                      domain.Ticket
			creatorID                   *string
			creatorName, creatorEmail   *string
			creatorRole                 *domain.Role
			assigneeName, assigneeEmail *string
			assigneeRole                *domain.Role
		)
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Priority,
			&ticket.Status,
			&ticket.Type,
			&creatorID,
			&ticket.CompanyID,
			&ticket.AssigneeID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&creatorName,
			&creatorEmail,
			&creatorRole,
			&assigneeName,
			&assigneeEmail,
			&assigneeRole,
		); err != nil {
			return nil, err
		}
		if creatorID != nil {
			ticket.CreatorID = *creatorID
			ticket.Creator = joinedSummary(*creatorID, creatorName, creatorEmail, creatorRole)
		}
		if ticket.AssigneeID != nil {
			ticket.Assignee = joinedSummary(*ticket.AssigneeID, assigneeName, assigneeEmail, assigneeRole)
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func joinedSummary(id string, name, email *string, role *domain.Role) *domain.UserSummary {
	if name == nil {
		return nil
	}
	summary := &domain.UserSummary{ID: id, Name: *name}
	if email != nil {
		summary.Email = *email
	}
	if role != nil {
		summary.Role = *role
	}
	return summary
}
