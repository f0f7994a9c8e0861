package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spec-kit/case-service/internal/config"
)

const sendPath = "/emails:send?api-version=2023-03-31"

// ACSMailer sends email through an Azure Communication Services style REST
// endpoint.
type ACSMailer struct {
	endpoint    string
	accessToken string
	sender      string
	companyName string
	client      *http.Client
}

// NewACSMailer builds a provider-backed mailer from config.
func NewACSMailer(cfg config.EmailConfig) *ACSMailer {
	return &ACSMailer{
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		accessToken: cfg.AccessToken,
		sender:      cfg.SenderAddress,
		companyName: cfg.CompanyName,
		client:      &http.Client{Timeout: cfg.Timeout()},
	}
}

type sendRequest struct {
	SenderAddress string         `json:"senderAddress"`
	Recipients    sendRecipients `json:"recipients"`
	Content       sendContent    `json:"content"`
}

type sendRecipients struct {
	To []sendAddress `json:"to"`
}

type sendAddress struct {
	Address     string `json:"address"`
	DisplayName string `json:"displayName"`
}

type sendContent struct {
	Subject   string `json:"subject"`
	PlainText string `json:"plainText"`
	HTML      string `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send posts the message to the provider and returns its message id.
func (m *ACSMailer) Send(ctx context.Context, msg Message) (string, error) {
	payload := sendRequest{
		SenderAddress: m.sender,
		Recipients: sendRecipients{
			To: []sendAddress{{Address: msg.To, DisplayName: msg.ToName}},
		},
		Content: sendContent{
			Subject:   subjectFor(msg.TicketNumber, m.companyName),
			PlainText: plainBody(msg, m.companyName),
			HTML:      htmlBody(msg, m.companyName),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint+sendPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if m.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+m.accessToken)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("email provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed sendResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode provider response: %w", err)
	}
	return parsed.ID, nil
}
