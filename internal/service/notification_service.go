package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/case-service/internal/config"
	"github.com/spec-kit/case-service/internal/events"
)

// NotificationService forwards domain events to logs and an optional webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	client     *http.Client
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketUpdated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketDeleted, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketResponseSent, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketResponseFailed, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("domain event",
		zap.String("type", string(event.Type)),
		zap.Int64("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	n.postWebhook(ctx, event)
	return nil
}

func (n *NotificationService) postWebhook(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("marshal webhook payload", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		n.logger.Warn("build webhook request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if n.cfg.WebhookToken != "" {
		req.Header.Set("Authorization", "Bearer "+n.cfg.WebhookToken)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed", zap.Error(err), zap.String("event_type", string(event.Type)))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		n.logger.Warn("webhook rejected", zap.Int("status", resp.StatusCode), zap.String("event_type", string(event.Type)))
	}
}
