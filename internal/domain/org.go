package domain

import "time"

// Organization is the top of the tenant hierarchy.
type Organization struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Department is an organizational unit whose head signs off on
// approval-pending tickets.
type Department struct {
	ID             string
	Name           string
	Description    string
	OrganizationID string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Category labels tickets for routing and reporting.
type Category struct {
	ID             string
	Name           string
	Description    string
	OrganizationID string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
