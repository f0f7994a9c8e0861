package domain

import "time"

// Agent is a staff member allowed to manage tickets. Agents are provisioned
// out of band; the API only authenticates them.
type Agent struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}
