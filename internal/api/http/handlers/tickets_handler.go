package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/case-service/internal/api/dto"
	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/service"
	apperrors "github.com/spec-kit/case-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := service.TicketListFilter{
		Skip:  parseInt(c.Query("skip"), 0),
		Limit: parseInt(c.Query("limit"), 100),
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}
	if v := c.Query("priority"); v != "" {
		filter.Priority = &v
	}

	tickets, err := h.service.ListTickets(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Category) == "" {
		return apperrors.NewValidationError("title and category required", nil)
	}

	ticket, err := h.service.CreateTicket(c.Context(), service.TicketCreateInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Priority:      req.Priority,
		Status:        req.Status,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		CustomerID:    req.CustomerID,
		AssignedTo:    req.AssignedTo,
		Department:    req.Department,
		Tags:          req.Tags,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.UpdateTicket(c.Context(), id, service.TicketUpdateInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Priority:      req.Priority,
		Status:        req.Status,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		CustomerID:    req.CustomerID,
		AssignedTo:    req.AssignedTo,
		Department:    req.Department,
		Tags:          req.Tags,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTicket(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Respond POST /tickets/:id/respond.
func (h *TicketsHandler) Respond(c *fiber.Ctx) error {
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.ResponseText) == "" {
		return apperrors.NewValidationError("response_text required", nil)
	}

	resp, err := h.service.Respond(c.Context(), id, req.ResponseText, req.SentBy)
	if err != nil {
		// A failed send is reported even though the failed record was
		// durably written; the error envelope carries the provider text.
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": responseRecord(resp)})
}

// ListResponses GET /tickets/:id/responses.
func (h *TicketsHandler) ListResponses(c *fiber.Ctx) error {
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	responses, err := h.service.ListResponses(c.Context(), id)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponseRecord, 0, len(responses))
	for i := range responses {
		items = append(items, responseRecord(&responses[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:                    ticket.ID,
		TicketNumber:          ticket.TicketNumber,
		Title:                 ticket.Title,
		Description:           ticket.Description,
		Category:              ticket.Category,
		Priority:              ticket.Priority,
		Status:                ticket.Status,
		CustomerName:          ticket.CustomerName,
		CustomerEmail:         ticket.CustomerEmail,
		CustomerPhone:         ticket.CustomerPhone,
		CustomerID:            ticket.CustomerID,
		AssignedTo:            ticket.AssignedTo,
		AssignedAt:            ticket.AssignedAt,
		Department:            ticket.Department,
		CreatedAt:             ticket.CreatedAt,
		UpdatedAt:             ticket.UpdatedAt,
		FirstResponseAt:       ticket.FirstResponseAt,
		ResolvedAt:            ticket.ResolvedAt,
		ClosedAt:              ticket.ClosedAt,
		DueDate:               ticket.DueDate,
		ResponseTimeMinutes:   ticket.ResponseTimeMinutes,
		ResolutionTimeMinutes: ticket.ResolutionTimeMinutes,
		Tags:                  ticket.Tags,
		SatisfactionRating:    ticket.SatisfactionRating,
		ReopenedCount:         ticket.ReopenedCount,
		Escalated:             ticket.Escalated,
		Notes:                 ticket.Notes,
	}
}

func responseRecord(resp *domain.TicketResponse) dto.TicketResponseRecord {
	return dto.TicketResponseRecord{
		ID:                resp.ID,
		TicketID:          resp.TicketID,
		ResponseText:      resp.ResponseText,
		SentBy:            resp.SentBy,
		EmailStatus:       resp.EmailStatus,
		EmailMessageID:    resp.EmailMessageID,
		EmailErrorMessage: resp.EmailErrorMessage,
		CreatedAt:         resp.CreatedAt,
		SentAt:            resp.SentAt,
		DeliveredAt:       resp.DeliveredAt,
	}
}
