package dto

import (
	"time"

	"github.com/spec-kit/case-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title         string                `json:"title"`
	Description   *string               `json:"description"`
	Category      string                `json:"category"`
	Priority      domain.TicketPriority `json:"priority"`
	Status        domain.TicketStatus   `json:"status"`
	CustomerName  *string               `json:"customer_name"`
	CustomerEmail *string               `json:"customer_email"`
	CustomerPhone *string               `json:"customer_phone"`
	CustomerID    *string               `json:"customer_id"`
	AssignedTo    *string               `json:"assigned_to"`
	Department    *string               `json:"department"`
	Tags          []string              `json:"tags"`
	Notes         *string               `json:"notes"`
}

// UpdateTicketRequest payload. Absent fields stay nil and are not applied.
type UpdateTicketRequest struct {
	Title         *string                `json:"title"`
	Description   *string                `json:"description"`
	Category      *string                `json:"category"`
	Priority      *domain.TicketPriority `json:"priority"`
	Status        *domain.TicketStatus   `json:"status"`
	CustomerName  *string                `json:"customer_name"`
	CustomerEmail *string                `json:"customer_email"`
	CustomerPhone *string                `json:"customer_phone"`
	CustomerID    *string                `json:"customer_id"`
	AssignedTo    *string                `json:"assigned_to"`
	Department    *string                `json:"department"`
	Tags          []string               `json:"tags"`
	Notes         *string                `json:"notes"`
}

// RespondRequest payload for sending a customer response.
type RespondRequest struct {
	ResponseText string  `json:"response_text"`
	SentBy       *string `json:"sent_by"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID                    int64                 `json:"id"`
	TicketNumber          string                `json:"ticket_number"`
	Title                 string                `json:"title"`
	Description           *string               `json:"description"`
	Category              string                `json:"category"`
	Priority              domain.TicketPriority `json:"priority"`
	Status                domain.TicketStatus   `json:"status"`
	CustomerName          *string               `json:"customer_name"`
	CustomerEmail         *string               `json:"customer_email"`
	CustomerPhone         *string               `json:"customer_phone"`
	CustomerID            *string               `json:"customer_id"`
	AssignedTo            *string               `json:"assigned_to"`
	AssignedAt            *time.Time            `json:"assigned_at"`
	Department            *string               `json:"department"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
	FirstResponseAt       *time.Time            `json:"first_response_at"`
	ResolvedAt            *time.Time            `json:"resolved_at"`
	ClosedAt              *time.Time            `json:"closed_at"`
	DueDate               *time.Time            `json:"due_date"`
	ResponseTimeMinutes   *int                  `json:"response_time_minutes"`
	ResolutionTimeMinutes *int                  `json:"resolution_time_minutes"`
	Tags                  []string              `json:"tags"`
	SatisfactionRating    *int                  `json:"satisfaction_rating"`
	ReopenedCount         int                   `json:"reopened_count"`
	Escalated             bool                  `json:"escalated"`
	Notes                 *string               `json:"notes"`
}

// TicketResponseRecord represents one response attempt.
type TicketResponseRecord struct {
	ID                int64              `json:"id"`
	TicketID          int64              `json:"ticket_id"`
	ResponseText      string             `json:"response_text"`
	SentBy            *string            `json:"sent_by"`
	EmailStatus       domain.EmailStatus `json:"email_status"`
	EmailMessageID    *string            `json:"email_message_id"`
	EmailErrorMessage *string            `json:"email_error_message"`
	CreatedAt         time.Time          `json:"created_at"`
	SentAt            *time.Time         `json:"sent_at"`
	DeliveredAt       *time.Time         `json:"delivered_at"`
}
