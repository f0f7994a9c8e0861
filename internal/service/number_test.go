package service

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

type fakeNumberSource struct {
	latest      string
	err         error
	lastPattern string
}

func (s *fakeNumberSource) LatestNumberMatching(ctx context.Context, pattern string) (string, error) {
	s.lastPattern = pattern
	return s.latest, s.err
}

func TestTicketNumberGenerator(t *testing.T) {
	clk := &fakeClock{now: time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)}

	cases := []struct {
		name     string
		category string
		latest   string
		want     string
	}{
		{"first ticket in scope", "Tax", "", "TAX-2025-0001"},
		{"increments latest", "Tax", "TAX-2025-0007", "TAX-2025-0008"},
		{"short category keeps full length", "IT", "", "IT-2025-0001"},
		{"long category truncates to three", "Payroll", "PAY-2025-0041", "PAY-2025-0042"},
		{"malformed tail falls back to one", "Tax", "TAX-2025-oops", "TAX-2025-0001"},
		{"overflow widens past four digits", "Tax", "TAX-2025-9999", "TAX-2025-10000"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeNumberSource{latest: tt.latest}
			gen := NewTicketNumberGenerator(source, clk)
			got, err := gen.Next(context.Background(), tt.category)
			if err != nil {
				t.Fatalf("Next: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Next(%q)=%q, want %q", tt.category, got, tt.want)
			}
		})
	}
}

func TestTicketNumberGeneratorScopesPatternByPrefixAndYear(t *testing.T) {
	clk := &fakeClock{now: time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC)}
	source := &fakeNumberSource{}
	gen := NewTicketNumberGenerator(source, clk)

	if _, err := gen.Next(context.Background(), "Billing"); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if source.lastPattern != "BIL-2024-%" {
		t.Fatalf("pattern=%q, want %q", source.lastPattern, "BIL-2024-%")
	}

	// One minute later it is 2025 in UTC and the sequence scope resets.
	clk.now = clk.now.Add(time.Minute)
	got, err := gen.Next(context.Background(), "Billing")
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if source.lastPattern != "BIL-2025-%" {
		t.Fatalf("pattern=%q, want %q", source.lastPattern, "BIL-2025-%")
	}
	if got != "BIL-2025-0001" {
		t.Fatalf("Next=%q, want BIL-2025-0001", got)
	}
}

func TestCategoryPrefix(t *testing.T) {
	cases := []struct {
		category string
		want     string
	}{
		{"Tax", "TAX"},
		{"tax", "TAX"},
		{"IT", "IT"},
		{"a", "A"},
		{"", ""},
	}
	for _, tt := range cases {
		if got := categoryPrefix(tt.category); got != tt.want {
			t.Fatalf("categoryPrefix(%q)=%q, want %q", tt.category, got, tt.want)
		}
	}
}
