package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Event names published on the dispatcher.
const (
	EventTicketCreated       = "ticket.created"
	EventTicketStatusChanged = "ticket.status_changed"
	EventTicketApproved      = "ticket.approved"
	EventTicketRejected      = "ticket.rejected"
	EventTicketCommented     = "ticket.commented"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID string
	Role   domain.UserRole
}

// TicketCreatedPayload accompanies EventTicketCreated.
type TicketCreatedPayload struct {
	Ticket *domain.Ticket
	Actor  Actor
	At     time.Time
}

// StatusChangedPayload accompanies EventTicketStatusChanged,
// EventTicketApproved and EventTicketRejected.
type StatusChangedPayload struct {
	Ticket *domain.Ticket
	From   domain.TicketStatus
	To     domain.TicketStatus
	Reason string
	Actor  Actor
	At     time.Time
}

// CommentedPayload accompanies EventTicketCommented. MentionedUserIDs
// carries the resolved directory IDs so notification fan-out does not
// re-parse the content.
type CommentedPayload struct {
	Ticket           *domain.Ticket
	Comment          *domain.Comment
	MentionedUserIDs []string
	Actor            Actor
	At               time.Time
}
