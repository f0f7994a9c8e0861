package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/case-service/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Status   *string
	Category *string
	Priority *string
	Limit    int
	Offset   int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	LatestNumberMatching(ctx context.Context, pattern string) (string, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, title, description, category, priority, status,
        customer_name, customer_email, customer_phone, customer_id,
        assigned_to, assigned_at, department,
        created_at, updated_at, first_response_at, resolved_at, closed_at, due_date,
        response_time_minutes, resolution_time_minutes,
        tags, satisfaction_rating, reopened_count, escalated, notes`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_number, title, description, category, priority, status,
            customer_name, customer_email, customer_phone, customer_id,
            assigned_to, assigned_at, department, due_date, tags, escalated, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.CustomerName,
		ticket.CustomerEmail,
		ticket.CustomerPhone,
		ticket.CustomerID,
		ticket.AssignedTo,
		ticket.AssignedAt,
		ticket.Department,
		ticket.DueDate,
		ticket.Tags,
		ticket.Escalated,
		ticket.Notes,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, category=$3, priority=$4, status=$5,
            customer_name=$6, customer_email=$7, customer_phone=$8, customer_id=$9,
            assigned_to=$10, assigned_at=$11, department=$12,
            first_response_at=$13, resolved_at=$14, closed_at=$15, due_date=$16,
            tags=$17, satisfaction_rating=$18, reopened_count=$19, escalated=$20, notes=$21,
            updated_at=NOW()
        WHERE id=$22`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.CustomerName,
		ticket.CustomerEmail,
		ticket.CustomerPhone,
		ticket.CustomerID,
		ticket.AssignedTo,
		ticket.AssignedAt,
		ticket.Department,
		ticket.FirstResponseAt,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.DueDate,
		ticket.Tags,
		ticket.SatisfactionRating,
		ticket.ReopenedCount,
		ticket.Escalated,
		ticket.Notes,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	row := r.pool.QueryRow(ctx, query, id)
	return scanTicket(row)
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// LatestNumberMatching returns the ticket number of the most recently
// inserted ticket whose number matches the given LIKE pattern, or "" when no
// ticket matches.
func (r *ticketRepository) LatestNumberMatching(ctx context.Context, pattern string) (string, error) {
	const query = `SELECT ticket_number FROM tickets WHERE ticket_number LIKE $1 ORDER BY id DESC LIMIT 1`
	var number string
	if err := r.pool.QueryRow(ctx, query, pattern).Scan(&number); err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return number, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Status,
		&ticket.CustomerName,
		&ticket.CustomerEmail,
		&ticket.CustomerPhone,
		&ticket.CustomerID,
		&ticket.AssignedTo,
		&ticket.AssignedAt,
		&ticket.Department,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.FirstResponseAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&ticket.DueDate,
		&ticket.ResponseTimeMinutes,
		&ticket.ResolutionTimeMinutes,
		&ticket.Tags,
		&ticket.SatisfactionRating,
		&ticket.ReopenedCount,
		&ticket.Escalated,
		&ticket.Notes,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
