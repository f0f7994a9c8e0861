package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/mailer"
	"github.com/spec-kit/case-service/internal/repository"
	apperrors "github.com/spec-kit/case-service/pkg/util/errorutil"
)

type fakeTicketRepo struct {
	tickets map[int64]domain.Ticket
	nextID  int64
	latest  string
	updates int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[int64]domain.Ticket{}, nextID: 1}
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	ticket.ID = r.nextID
	r.nextID++
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = *ticket
	r.updates++
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := ticket
	return &copied, nil
}

func (r *fakeTicketRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		out = append(out, ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) LatestNumberMatching(ctx context.Context, pattern string) (string, error) {
	return r.latest, nil
}

type fakeResponseRepo struct {
	responses map[int64]domain.TicketResponse
	nextID    int64
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{responses: map[int64]domain.TicketResponse{}, nextID: 1}
}

func (r *fakeResponseRepo) Create(ctx context.Context, resp *domain.TicketResponse) error {
	resp.ID = r.nextID
	r.nextID++
	resp.CreatedAt = time.Now()
	r.responses[resp.ID] = *resp
	return nil
}

func (r *fakeResponseRepo) MarkSent(ctx context.Context, id int64, messageID string, sentAt time.Time) error {
	resp, ok := r.responses[id]
	if !ok || resp.EmailStatus != domain.EmailStatusPending {
		return pgx.ErrNoRows
	}
	resp.EmailStatus = domain.EmailStatusSent
	resp.EmailMessageID = &messageID
	resp.SentAt = &sentAt
	r.responses[id] = resp
	return nil
}

func (r *fakeResponseRepo) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	resp, ok := r.responses[id]
	if !ok || resp.EmailStatus != domain.EmailStatusPending {
		return pgx.ErrNoRows
	}
	resp.EmailStatus = domain.EmailStatusFailed
	resp.EmailErrorMessage = &errorMessage
	r.responses[id] = resp
	return nil
}

func (r *fakeResponseRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketResponse, error) {
	var out []domain.TicketResponse
	for _, resp := range r.responses {
		if resp.TicketID == ticketID {
			out = append(out, resp)
		}
	}
	return out, nil
}

type fakeMailer struct {
	fail      bool
	messageID string
	sent      []mailer.Message
}

func (m *fakeMailer) Send(ctx context.Context, msg mailer.Message) (string, error) {
	if m.fail {
		return "", errors.New("provider unavailable")
	}
	m.sent = append(m.sent, msg)
	return m.messageID, nil
}

func newTestService(tickets *fakeTicketRepo, responses *fakeResponseRepo, mail mailer.Mailer, clk *fakeClock) *TicketService {
	return NewTicketService(TicketDependencies{
		TicketRepo:   tickets,
		ResponseRepo: responses,
		Numbers:      NewTicketNumberGenerator(tickets, clk),
		Mailer:       mail,
		Clock:        clk,
	})
}

func strptr(s string) *string {
	return &s
}

func statusPtr(s domain.TicketStatus) *domain.TicketStatus {
	return &s
}

func seedTicket(repo *fakeTicketRepo, mutate func(*domain.Ticket)) int64 {
	ticket := &domain.Ticket{
		TicketNumber: "TAX-2025-0001",
		Title:        "Missing W-2",
		Category:     "Tax",
		Priority:     domain.TicketPriorityMedium,
		Status:       domain.TicketStatusNew,
	}
	if mutate != nil {
		mutate(ticket)
	}
	_ = repo.Create(context.Background(), ticket)
	return ticket.ID
}

func TestCreateTicketAssignsNumberAndDefaults(t *testing.T) {
	tickets := newFakeTicketRepo()
	clk := &fakeClock{now: time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)}
	svc := newTestService(tickets, newFakeResponseRepo(), &fakeMailer{}, clk)

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		Title:    "Missing W-2",
		Category: "Tax",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.TicketNumber != "TAX-2025-0001" {
		t.Fatalf("ticket number=%q, want TAX-2025-0001", ticket.TicketNumber)
	}
	if ticket.Priority != domain.TicketPriorityMedium {
		t.Fatalf("priority=%q, want medium", ticket.Priority)
	}
	if ticket.Status != domain.TicketStatusNew {
		t.Fatalf("status=%q, want new", ticket.Status)
	}
}

func TestUpdateTicketEmptyInputChangesNothing(t *testing.T) {
	tickets := newFakeTicketRepo()
	clk := &fakeClock{now: time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)}
	svc := newTestService(tickets, newFakeResponseRepo(), &fakeMailer{}, clk)
	id := seedTicket(tickets, nil)
	before := tickets.tickets[id]

	updated, err := svc.UpdateTicket(context.Background(), id, TicketUpdateInput{})
	if err != nil {
		t.Fatalf("UpdateTicket: %v", err)
	}
	if updated.Title != before.Title || updated.Status != before.Status || updated.Priority != before.Priority {
		t.Fatal("empty update mutated fields")
	}
	if updated.FirstResponseAt != nil || updated.ResolvedAt != nil || updated.ClosedAt != nil {
		t.Fatal("empty update set SLA timestamps")
	}
	if tickets.updates != 1 {
		t.Fatalf("updates=%d, want 1", tickets.updates)
	}
}

func TestUpdateTicketStatusDerivesTimestamps(t *testing.T) {
	tickets := newFakeTicketRepo()
	clk := &fakeClock{now: time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)}
	svc := newTestService(tickets, newFakeResponseRepo(), &fakeMailer{}, clk)
	id := seedTicket(tickets, nil)

	updated, err := svc.UpdateTicket(context.Background(), id, TicketUpdateInput{Status: statusPtr(domain.TicketStatusInProgress)})
	if err != nil {
		t.Fatalf("UpdateTicket: %v", err)
	}
	if updated.FirstResponseAt == nil || !updated.FirstResponseAt.Equal(clk.now) {
		t.Fatalf("first_response_at=%v, want %v", updated.FirstResponseAt, clk.now)
	}

	firstResolved := clk.now.Add(time.Hour)
	clk.now = firstResolved
	updated, err = svc.UpdateTicket(context.Background(), id, TicketUpdateInput{Status: statusPtr(domain.TicketStatusResolved)})
	if err != nil {
		t.Fatalf("UpdateTicket: %v", err)
	}
	if updated.ResolvedAt == nil || !updated.ResolvedAt.Equal(firstResolved) {
		t.Fatalf("resolved_at=%v, want %v", updated.ResolvedAt, firstResolved)
	}

	// Resolving again later must not overwrite the write-once timestamp.
	clk.now = clk.now.Add(time.Hour)
	updated, err = svc.UpdateTicket(context.Background(), id, TicketUpdateInput{Status: statusPtr(domain.TicketStatusResolved)})
	if err != nil {
		t.Fatalf("UpdateTicket: %v", err)
	}
	if !updated.ResolvedAt.Equal(firstResolved) {
		t.Fatalf("resolved_at changed on repeat transition: %v", updated.ResolvedAt)
	}
}

func TestUpdateTicketNotFound(t *testing.T) {
	tickets := newFakeTicketRepo()
	clk := &fakeClock{now: time.Now()}
	svc := newTestService(tickets, newFakeResponseRepo(), &fakeMailer{}, clk)

	_, err := svc.UpdateTicket(context.Background(), 42, TicketUpdateInput{})
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("err=%v, want NOT_FOUND", err)
	}
}

func TestRespondWithoutCustomerEmail(t *testing.T) {
	tickets := newFakeTicketRepo()
	responses := newFakeResponseRepo()
	clk := &fakeClock{now: time.Now()}
	svc := newTestService(tickets, responses, &fakeMailer{}, clk)
	id := seedTicket(tickets, nil)

	_, err := svc.Respond(context.Background(), id, "We are looking into it.", nil)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("err=%v, want VALIDATION_FAILED", err)
	}
	if len(responses.responses) != 0 {
		t.Fatalf("responses=%d, want 0", len(responses.responses))
	}
}

func TestRespondSendFailureIsRecordedAndReported(t *testing.T) {
	tickets := newFakeTicketRepo()
	responses := newFakeResponseRepo()
	clk := &fakeClock{now: time.Now()}
	svc := newTestService(tickets, responses, &fakeMailer{fail: true}, clk)
	id := seedTicket(tickets, func(t *domain.Ticket) {
		t.CustomerEmail = strptr("customer@example.com")
	})

	resp, err := svc.Respond(context.Background(), id, "We are looking into it.", strptr("alice"))
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "EMAIL_DELIVERY_FAILED" {
		t.Fatalf("err=%v, want EMAIL_DELIVERY_FAILED", err)
	}
	if resp == nil {
		t.Fatal("failed respond must still return the durable record")
	}
	stored := responses.responses[resp.ID]
	if stored.EmailStatus != domain.EmailStatusFailed {
		t.Fatalf("email_status=%q, want failed", stored.EmailStatus)
	}
	if stored.EmailErrorMessage == nil || *stored.EmailErrorMessage == "" {
		t.Fatal("email_error_message not recorded")
	}
	if tickets.tickets[id].FirstResponseAt != nil {
		t.Fatal("failed send must not set first_response_at")
	}
}

func TestRespondSuccessSetsFirstResponseOnce(t *testing.T) {
	tickets := newFakeTicketRepo()
	responses := newFakeResponseRepo()
	clk := &fakeClock{now: time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)}
	mail := &fakeMailer{messageID: "msg-123"}
	svc := newTestService(tickets, responses, mail, clk)
	id := seedTicket(tickets, func(t *domain.Ticket) {
		t.CustomerName = strptr("Jane Doe")
		t.CustomerEmail = strptr("customer@example.com")
	})

	firstSend := clk.now
	resp, err := svc.Respond(context.Background(), id, "Refund processed.", strptr("alice"))
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if resp.EmailStatus != domain.EmailStatusSent {
		t.Fatalf("email_status=%q, want sent", resp.EmailStatus)
	}
	if resp.EmailMessageID == nil || *resp.EmailMessageID != "msg-123" {
		t.Fatalf("email_message_id=%v, want msg-123", resp.EmailMessageID)
	}
	if resp.SentAt == nil || !resp.SentAt.Equal(firstSend) {
		t.Fatalf("sent_at=%v, want %v", resp.SentAt, firstSend)
	}
	stored := tickets.tickets[id]
	if stored.FirstResponseAt == nil || !stored.FirstResponseAt.Equal(firstSend) {
		t.Fatalf("first_response_at=%v, want %v", stored.FirstResponseAt, firstSend)
	}
	if len(mail.sent) != 1 || mail.sent[0].ToName != "Jane Doe" {
		t.Fatalf("mail sent=%v", mail.sent)
	}

	// A second successful response keeps the original timestamp.
	clk.now = clk.now.Add(time.Hour)
	if _, err := svc.Respond(context.Background(), id, "Anything else?", nil); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	stored = tickets.tickets[id]
	if !stored.FirstResponseAt.Equal(firstSend) {
		t.Fatalf("first_response_at moved to %v", stored.FirstResponseAt)
	}
}

func TestRespondFallsBackToCustomerDisplayName(t *testing.T) {
	tickets := newFakeTicketRepo()
	clk := &fakeClock{now: time.Now()}
	mail := &fakeMailer{messageID: "msg-1"}
	svc := newTestService(tickets, newFakeResponseRepo(), mail, clk)
	id := seedTicket(tickets, func(t *domain.Ticket) {
		t.CustomerEmail = strptr("customer@example.com")
	})

	if _, err := svc.Respond(context.Background(), id, "Hello", nil); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if mail.sent[0].ToName != "Customer" {
		t.Fatalf("ToName=%q, want Customer", mail.sent[0].ToName)
	}
}

func TestDeleteTicket(t *testing.T) {
	tickets := newFakeTicketRepo()
	clk := &fakeClock{now: time.Now()}
	svc := newTestService(tickets, newFakeResponseRepo(), &fakeMailer{}, clk)
	id := seedTicket(tickets, nil)

	if err := svc.DeleteTicket(context.Background(), id); err != nil {
		t.Fatalf("DeleteTicket: %v", err)
	}
	if _, ok := tickets.tickets[id]; ok {
		t.Fatal("ticket still present after delete")
	}

	err := svc.DeleteTicket(context.Background(), id)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("err=%v, want NOT_FOUND", err)
	}
}
