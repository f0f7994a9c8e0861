package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. The column is free
// text, so unknown values are tolerated; only the states below drive SLA
// timestamps.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Ticket is the aggregate for customer cases. TicketNumber is assigned once
// at creation and never changes, even when the category is later edited.
type Ticket struct {
	ID           int64
	TicketNumber string
	Title        string
	Description  *string
	Category     string
	Priority     TicketPriority
	Status       TicketStatus

	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	CustomerID    *string

	AssignedTo *string
	AssignedAt *time.Time
	Department *string

	CreatedAt       time.Time
	UpdatedAt       time.Time
	FirstResponseAt *time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time
	DueDate         *time.Time

	// Stored only; computed by downstream reporting, never written here.
	ResponseTimeMinutes   *int
	ResolutionTimeMinutes *int

	Tags               []string
	SatisfactionRating *int
	ReopenedCount      int
	Escalated          bool
	Notes              *string
}

// MarkFirstResponse records the first-response time once. Both the status
// transition to in_progress and a successful customer response funnel through
// here, so the field can never be overwritten from either path.
func (t *Ticket) MarkFirstResponse(now time.Time) bool {
	if t.FirstResponseAt != nil {
		return false
	}
	ts := now
	t.FirstResponseAt = &ts
	return true
}

// MarkResolved records the resolution time once.
func (t *Ticket) MarkResolved(now time.Time) bool {
	if t.ResolvedAt != nil {
		return false
	}
	ts := now
	t.ResolvedAt = &ts
	return true
}

// MarkClosed records the closing time once.
func (t *Ticket) MarkClosed(now time.Time) bool {
	if t.ClosedAt != nil {
		return false
	}
	ts := now
	t.ClosedAt = &ts
	return true
}

// ApplyStatus sets the status and derives the write-once SLA timestamp for
// the entered state. Statuses outside the tracked set carry no side effect.
func (t *Ticket) ApplyStatus(status TicketStatus, now time.Time) {
	t.Status = status
	switch status {
	case TicketStatusInProgress:
		t.MarkFirstResponse(now)
	case TicketStatusResolved:
		t.MarkResolved(now)
	case TicketStatusClosed:
		t.MarkClosed(now)
	}
}
