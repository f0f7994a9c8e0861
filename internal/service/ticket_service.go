package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/case-service/internal/cache"
	"github.com/spec-kit/case-service/internal/clock"
	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/events"
	"github.com/spec-kit/case-service/internal/mailer"
	"github.com/spec-kit/case-service/internal/repository"
	apperrors "github.com/spec-kit/case-service/pkg/util/errorutil"
)

// TicketService coordinates ticket lifecycle workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	responses  repository.TicketResponseRepository
	numbers    *TicketNumberGenerator
	mail       mailer.Mailer
	cache      *cache.TicketCache
	dispatcher events.Dispatcher
	clock      clock.Clock
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	ResponseRepo repository.TicketResponseRepository
	Numbers      *TicketNumberGenerator
	Mailer       mailer.Mailer
	Cache        *cache.TicketCache
	Dispatcher   events.Dispatcher
	Clock        clock.Clock
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.System()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		responses:  deps.ResponseRepo,
		numbers:    deps.Numbers,
		mail:       deps.Mailer,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		clock:      clk,
	}
}

// TicketCreateInput describes ticket creation payload. Title and Category are
// required; the boundary layer validates them before calling in.
type TicketCreateInput struct {
	Title         string
	Description   *string
	Category      string
	Priority      domain.TicketPriority
	Status        domain.TicketStatus
	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	CustomerID    *string
	AssignedTo    *string
	Department    *string
	Tags          []string
	Notes         *string
}

// TicketUpdateInput applies only the fields that are non-nil; everything else
// is left untouched. There is no way to null a field through an update.
type TicketUpdateInput struct {
	Title         *string
	Description   *string
	Category      *string
	Priority      *domain.TicketPriority
	Status        *domain.TicketStatus
	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	CustomerID    *string
	AssignedTo    *string
	Department    *string
	Tags          []string
	Notes         *string
}

// TicketListFilter describes listing parameters.
type TicketListFilter struct {
	Status   *string
	Category *string
	Priority *string
	Skip     int
	Limit    int
}

// CreateTicket assigns a ticket number and persists the new ticket. The
// number is computed and inserted in the same request; a concurrent creation
// in the same category/year scope can collide, in which case the unique index
// rejects the insert and the caller sees a conflict.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	number, err := s.numbers.Next(ctx, input.Category)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		TicketNumber:  number,
		Title:         input.Title,
		Description:   input.Description,
		Category:      input.Category,
		Priority:      input.Priority,
		Status:        input.Status,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		CustomerID:    input.CustomerID,
		AssignedTo:    input.AssignedTo,
		Department:    input.Department,
		Tags:          input.Tags,
		Notes:         input.Notes,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusNew
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			Category:     ticket.Category,
			Priority:     ticket.Priority,
			Title:        ticket.Title,
		},
	})
	return ticket, nil
}

// ListTickets returns tickets newest-first with optional filters.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	return s.tickets.List(ctx, repository.TicketFilter{
		Status:   filter.Status,
		Category: filter.Category,
		Priority: filter.Priority,
		Limit:    filter.Limit,
		Offset:   filter.Skip,
	})
}

// GetTicket fetches one ticket, consulting the cache first.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	if ticket := s.cache.Get(ctx, id); ticket != nil {
		return ticket, nil
	}
	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, ticket)
	return ticket, nil
}

// UpdateTicket applies the provided fields and derives write-once SLA
// timestamps from status changes.
func (s *TicketService) UpdateTicket(ctx context.Context, id int64, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	changed := applyTicketFields(ticket, input)
	if input.Status != nil {
		ticket.ApplyStatus(*input.Status, s.clock.Now())
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, id)

	payload := events.TicketUpdatedPayload{
		TicketNumber:  ticket.TicketNumber,
		ChangedFields: changed,
	}
	if input.Status != nil {
		payload.OldStatus = &oldStatus
		payload.NewStatus = input.Status
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Payload:  payload,
	})
	return ticket, nil
}

// DeleteTicket removes the ticket; its responses cascade away with it.
func (s *TicketService) DeleteTicket(ctx context.Context, id int64) error {
	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: id,
		Payload:  events.TicketDeletedPayload{TicketNumber: ticket.TicketNumber},
	})
	return nil
}

// Respond creates a response record and attempts the customer email. The
// record is persisted with status pending before the send so the attempt is
// never lost. On provider failure the record is marked failed and the error
// is still returned to the caller alongside the durable record.
func (s *TicketService) Respond(ctx context.Context, ticketID int64, responseText string, sentBy *string) (*domain.TicketResponse, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.CustomerEmail == nil || *ticket.CustomerEmail == "" {
		return nil, apperrors.NewValidationError("ticket has no customer email", map[string]any{
			"ticket_number": ticket.TicketNumber,
		})
	}

	resp := &domain.TicketResponse{
		TicketID:     ticket.ID,
		ResponseText: responseText,
		SentBy:       sentBy,
		EmailStatus:  domain.EmailStatusPending,
	}
	if err := s.responses.Create(ctx, resp); err != nil {
		return nil, err
	}

	toName := "Customer"
	if ticket.CustomerName != nil && *ticket.CustomerName != "" {
		toName = *ticket.CustomerName
	}
	messageID, sendErr := s.mail.Send(ctx, mailer.Message{
		To:           *ticket.CustomerEmail,
		ToName:       toName,
		TicketNumber: ticket.TicketNumber,
		Body:         responseText,
		SentBy:       sentBy,
	})

	if sendErr != nil {
		errText := sendErr.Error()
		if err := s.responses.MarkFailed(ctx, resp.ID, errText); err != nil {
			return nil, err
		}
		resp.EmailStatus = domain.EmailStatusFailed
		resp.EmailErrorMessage = &errText
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketResponseFailed,
			TicketID: ticket.ID,
			Payload: events.TicketResponseFailedPayload{
				ResponseID:   resp.ID,
				TicketNumber: ticket.TicketNumber,
				Error:        errText,
			},
		})
		return resp, apperrors.NewEmailDeliveryError(sendErr)
	}

	now := s.clock.Now()
	if err := s.responses.MarkSent(ctx, resp.ID, messageID, now); err != nil {
		return nil, err
	}
	resp.EmailStatus = domain.EmailStatusSent
	resp.EmailMessageID = &messageID
	sentAt := now
	resp.SentAt = &sentAt

	if ticket.MarkFirstResponse(now) {
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, err
		}
	}
	s.cache.Invalidate(ctx, ticket.ID)

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketResponseSent,
		TicketID: ticket.ID,
		Payload: events.TicketResponseSentPayload{
			ResponseID:     resp.ID,
			TicketNumber:   ticket.TicketNumber,
			EmailMessageID: messageID,
		},
	})
	return resp, nil
}

// ListResponses returns a ticket's responses newest-first.
func (s *TicketService) ListResponses(ctx context.Context, ticketID int64) ([]domain.TicketResponse, error) {
	if _, err := s.loadTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.responses.ListByTicket(ctx, ticketID)
}

func (s *TicketService) loadTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, err
	}
	return ticket, nil
}

func applyTicketFields(ticket *domain.Ticket, input TicketUpdateInput) []string {
	changed := []string{}
	if input.Title != nil {
		ticket.Title = *input.Title
		changed = append(changed, "title")
	}
	if input.Description != nil {
		ticket.Description = input.Description
		changed = append(changed, "description")
	}
	if input.Category != nil {
		// The ticket number keeps its original prefix.
		ticket.Category = *input.Category
		changed = append(changed, "category")
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
		changed = append(changed, "priority")
	}
	if input.Status != nil {
		changed = append(changed, "status")
	}
	if input.CustomerName != nil {
		ticket.CustomerName = input.CustomerName
		changed = append(changed, "customer_name")
	}
	if input.CustomerEmail != nil {
		ticket.CustomerEmail = input.CustomerEmail
		changed = append(changed, "customer_email")
	}
	if input.CustomerPhone != nil {
		ticket.CustomerPhone = input.CustomerPhone
		changed = append(changed, "customer_phone")
	}
	if input.CustomerID != nil {
		ticket.CustomerID = input.CustomerID
		changed = append(changed, "customer_id")
	}
	if input.AssignedTo != nil {
		ticket.AssignedTo = input.AssignedTo
		changed = append(changed, "assigned_to")
	}
	if input.Department != nil {
		ticket.Department = input.Department
		changed = append(changed, "department")
	}
	if input.Tags != nil {
		ticket.Tags = input.Tags
		changed = append(changed, "tags")
	}
	if input.Notes != nil {
		ticket.Notes = input.Notes
		changed = append(changed, "notes")
	}
	return changed
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
