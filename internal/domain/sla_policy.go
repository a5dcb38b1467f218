package domain

import "time"

// SLAPolicy is an organization/priority-scoped time budget. A nil
// OrganizationID marks the global default policy for that priority.
// ResponseHours and ResolutionHours are fractional hours (1.5 = 1h30m).
type SLAPolicy struct {
	ID              string
	Name            string
	OrganizationID  *string
	Priority        TicketPriority
	ResponseHours   float64
	ResolutionHours float64
	IsActive        bool
	Description     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
