package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/case-service/internal/domain"
)

// TicketResponseRepository manages response records and their delivery state.
type TicketResponseRepository interface {
	Create(ctx context.Context, resp *domain.TicketResponse) error
	MarkSent(ctx context.Context, id int64, messageID string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id int64, errorMessage string) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketResponse, error)
}

type ticketResponseRepository struct {
	pool *pgxpool.Pool
}

// NewTicketResponseRepository builds repository.
func NewTicketResponseRepository(pool *pgxpool.Pool) TicketResponseRepository {
	return &ticketResponseRepository{pool: pool}
}

func (r *ticketResponseRepository) Create(ctx context.Context, resp *domain.TicketResponse) error {
	const query = `
        INSERT INTO ticket_responses (ticket_id, response_text, sent_by, email_status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		resp.TicketID,
		resp.ResponseText,
		resp.SentBy,
		resp.EmailStatus,
	).Scan(&resp.ID, &resp.CreatedAt)
}

// MarkSent finalizes delivery. The pending guard keeps email_status one-way.
func (r *ticketResponseRepository) MarkSent(ctx context.Context, id int64, messageID string, sentAt time.Time) error {
	const query = `
        UPDATE ticket_responses SET email_status=$1, email_message_id=$2, sent_at=$3
        WHERE id=$4 AND email_status=$5`
	cmd, err := r.pool.Exec(ctx, query, domain.EmailStatusSent, messageID, sentAt, id, domain.EmailStatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// MarkFailed records the provider error. Same pending guard as MarkSent.
func (r *ticketResponseRepository) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	const query = `
        UPDATE ticket_responses SET email_status=$1, email_error_message=$2
        WHERE id=$3 AND email_status=$4`
	cmd, err := r.pool.Exec(ctx, query, domain.EmailStatusFailed, errorMessage, id, domain.EmailStatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketResponseRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketResponse, error) {
	const query = `
        SELECT id, ticket_id, response_text, sent_by, email_status, email_message_id,
               email_error_message, created_at, sent_at, delivered_at
        FROM ticket_responses WHERE ticket_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketResponse
	for rows.Next() {
		var resp domain.TicketResponse
		if err := rows.Scan(
			&resp.ID,
			&resp.TicketID,
			&resp.ResponseText,
			&resp.SentBy,
			&resp.EmailStatus,
			&resp.EmailMessageID,
			&resp.EmailErrorMessage,
			&resp.CreatedAt,
			&resp.SentAt,
			&resp.DeliveredAt,
		); err != nil {
			return nil, err
		}
		result = append(result, resp)
	}
	return result, rows.Err()
}
