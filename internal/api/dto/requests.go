package dto

import "time"

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTicketRequest opens a new ticket. Status, ticket number and SLA
// deadlines are server-assigned and absent here.
type CreateTicketRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Priority     string  `json:"priority"`
	DepartmentID *string `json:"department_id"`
}

// UpdateTicketRequest is a partial update; omitted fields stay put.
type UpdateTicketRequest struct {
	Status       *string    `json:"status"`
	Reason       string     `json:"reason"`
	Priority     *string    `json:"priority"`
	AssigneeID   *string    `json:"assignee_id"`
	DepartmentID *string    `json:"department_id"`
	DueDate      *time.Time `json:"due_date"`
	Solution     *string    `json:"solution"`
}

// RejectTicketRequest carries the mandatory rejection reason.
type RejectTicketRequest struct {
	Reason string `json:"reason"`
}

// AddCommentRequest appends to a ticket's thread.
type AddCommentRequest struct {
	Content string `json:"content"`
}

// NameDescriptionRequest creates an organization, department or
// category.
type NameDescriptionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SLAPolicyRequest creates or replaces a policy. Budgets are the
// (hours, minutes) pairs users edit.
type SLAPolicyRequest struct {
	Name              string  `json:"name"`
	OrganizationID    *string `json:"organization_id"`
	Priority          string  `json:"priority"`
	ResponseHours     int     `json:"response_hours"`
	ResponseMinutes   int     `json:"response_minutes"`
	ResolutionHours   int     `json:"resolution_hours"`
	ResolutionMinutes int     `json:"resolution_minutes"`
	Description       string  `json:"description"`
	IsActive          bool    `json:"is_active"`
}
