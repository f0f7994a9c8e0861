package clock

import "time"

// Clock abstracts time access so numbering and SLA timestamps are
// deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// Now returns the current time in UTC. Ticket numbering is year-scoped, so
// the year boundary is pinned to UTC regardless of deployment timezone.
func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns the UTC wall clock.
func System() Clock {
	return systemClock{}
}
