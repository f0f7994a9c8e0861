package events

import (
	"time"

	"github.com/spec-kit/case-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated        EventType = "ticket_created"
	EventTicketUpdated        EventType = "ticket_updated"
	EventTicketDeleted        EventType = "ticket_deleted"
	EventTicketResponseSent   EventType = "ticket_response_sent"
	EventTicketResponseFailed EventType = "ticket_response_failed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string                `json:"ticket_number"`
	Category     string                `json:"category"`
	Priority     domain.TicketPriority `json:"priority"`
	Title        string                `json:"title"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	TicketNumber  string               `json:"ticket_number"`
	ChangedFields []string             `json:"changed_fields"`
	OldStatus     *domain.TicketStatus `json:"old_status,omitempty"`
	NewStatus     *domain.TicketStatus `json:"new_status,omitempty"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	TicketNumber string `json:"ticket_number"`
}

// TicketResponseSentPayload payload.
type TicketResponseSentPayload struct {
	ResponseID     int64  `json:"response_id"`
	TicketNumber   string `json:"ticket_number"`
	EmailMessageID string `json:"email_message_id"`
}

// TicketResponseFailedPayload payload.
type TicketResponseFailedPayload struct {
	ResponseID   int64  `json:"response_id"`
	TicketNumber string `json:"ticket_number"`
	Error        string `json:"error"`
}
