package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/case-service/internal/domain"
)

// TicketCache is a read-through cache for ticket detail lookups. All methods
// are nil-safe so the service runs without Redis.
type TicketCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New builds a cache over the given client.
func New(client *redis.Client, ttl time.Duration) *TicketCache {
	if client == nil {
		return nil
	}
	return &TicketCache{client: client, ttl: ttl}
}

func ticketKey(id int64) string {
	return fmt.Sprintf("ticket:%d", id)
}

// Get returns the cached ticket, or nil on miss or any cache error.
func (c *TicketCache) Get(ctx context.Context, id int64) *domain.Ticket {
	if c == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, ticketKey(id)).Bytes()
	if err != nil {
		return nil
	}
	var ticket domain.Ticket
	if err := json.Unmarshal(raw, &ticket); err != nil {
		return nil
	}
	return &ticket
}

// Set stores the ticket with the configured TTL. Errors are swallowed; the
// cache is advisory.
func (c *TicketCache) Set(ctx context.Context, ticket *domain.Ticket) {
	if c == nil || ticket == nil {
		return
	}
	raw, err := json.Marshal(ticket)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, ticketKey(ticket.ID), raw, c.ttl).Err()
}

// Invalidate drops the cached entry after any write.
func (c *TicketCache) Invalidate(ctx context.Context, id int64) {
	if c == nil {
		return
	}
	_ = c.client.Del(ctx, ticketKey(id)).Err()
}
