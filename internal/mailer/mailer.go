package mailer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message is one outbound ticket response email.
type Message struct {
	To           string
	ToName       string
	TicketNumber string
	Body         string
	SentBy       *string
}

// Mailer sends a ticket response to the customer and returns the provider
// message id. Transport failures and provider rejections are not
// distinguished; both surface as an error.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// LogMailer is the development fallback when no provider is configured. It
// logs the message and fabricates a message id so the sent path is exercised.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer builds the fallback mailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the outbound message.
func (m *LogMailer) Send(ctx context.Context, msg Message) (string, error) {
	messageID := uuid.NewString()
	m.logger.Info("email send (log mailer)",
		zap.String("to", msg.To),
		zap.String("ticket_number", msg.TicketNumber),
		zap.String("message_id", messageID),
	)
	return messageID, nil
}

func subjectFor(ticketNumber, companyName string) string {
	return fmt.Sprintf("Response to Ticket %s - %s", ticketNumber, companyName)
}

func plainBody(msg Message, companyName string) string {
	handledBy := ""
	if msg.SentBy != nil && *msg.SentBy != "" {
		handledBy = fmt.Sprintf("Handled by: %s\n", *msg.SentBy)
	}
	return fmt.Sprintf(`Dear %s,

Thank you for contacting %s.

%s

---
Ticket Reference: %s
%s
If you have any further questions, please reply to this email or contact us directly.

Best regards,
%s
`, msg.ToName, companyName, msg.Body, msg.TicketNumber, handledBy, companyName)
}

func htmlBody(msg Message, companyName string) string {
	handledBy := ""
	if msg.SentBy != nil && *msg.SentBy != "" {
		handledBy = fmt.Sprintf("<br><strong>Handled by:</strong> %s", *msg.SentBy)
	}
	return fmt.Sprintf(`<html><body>
<p>Dear %s,</p>
<p>Thank you for contacting %s.</p>
<p>%s</p>
<p><strong>Ticket Reference:</strong> %s%s</p>
<p>If you have any further questions, please reply to this email or contact us directly.</p>
<p>Best regards,<br>%s</p>
</body></html>`, msg.ToName, companyName, msg.Body, msg.TicketNumber, handledBy, companyName)
}
