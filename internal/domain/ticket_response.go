package domain

import "time"

// EmailStatus tracks delivery of a response. Transitions are one-way:
// pending becomes sent or failed and never reverses.
type EmailStatus string

const (
	EmailStatusPending EmailStatus = "pending"
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
)

// TicketResponse is one outbound communication attempt tied to a ticket.
// The row is written with status pending before the send is attempted, so a
// crash mid-send still leaves a durable trail.
type TicketResponse struct {
	ID       int64
	TicketID int64

	ResponseText string
	SentBy       *string

	EmailStatus       EmailStatus
	EmailMessageID    *string
	EmailErrorMessage *string

	CreatedAt   time.Time
	SentAt      *time.Time
	DeliveredAt *time.Time
}
