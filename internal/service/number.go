package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spec-kit/case-service/internal/clock"
)

// NumberSource looks up the latest assigned ticket number for a LIKE
// pattern. Satisfied by repository.TicketRepository.
type NumberSource interface {
	LatestNumberMatching(ctx context.Context, pattern string) (string, error)
}

// TicketNumberGenerator produces identifiers like TAX-2025-0001, scoped by
// category prefix and UTC calendar year.
//
// The read-then-insert window means two concurrent creations in the same
// scope can compute the same number; the unique index on ticket_number is the
// only backstop and the insert then fails with a conflict. There is no retry.
type TicketNumberGenerator struct {
	source NumberSource
	clock  clock.Clock
}

// NewTicketNumberGenerator constructs the generator.
func NewTicketNumberGenerator(source NumberSource, clk clock.Clock) *TicketNumberGenerator {
	return &TicketNumberGenerator{source: source, clock: clk}
}

// Next computes the next ticket number for the category.
func (g *TicketNumberGenerator) Next(ctx context.Context, category string) (string, error) {
	prefix := categoryPrefix(category)
	year := g.clock.Now().Year()

	latest, err := g.source.LatestNumberMatching(ctx, fmt.Sprintf("%s-%d-%%", prefix, year))
	if err != nil {
		return "", err
	}

	seq := 1
	if latest != "" {
		// Trailing segment after the last dash. A malformed historical
		// number degrades to sequence 1 rather than failing the create.
		tail := latest[strings.LastIndex(latest, "-")+1:]
		if parsed, err := strconv.Atoi(tail); err == nil {
			seq = parsed + 1
		}
	}

	// %04d grows past four digits after 9999 without error.
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq), nil
}

// categoryPrefix upper-cases the category and keeps its first three runes.
// Shorter categories keep their full length, no padding.
func categoryPrefix(category string) string {
	runes := []rune(strings.ToUpper(category))
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return string(runes)
}
