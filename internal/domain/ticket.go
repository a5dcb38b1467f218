package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen            TicketStatus = "open"
	TicketStatusApprovalPending TicketStatus = "approval-pending"
	TicketStatusApproved        TicketStatus = "approved"
	TicketStatusRejected        TicketStatus = "rejected"
	TicketStatusInProgress      TicketStatus = "in-progress"
	TicketStatusResolved        TicketStatus = "resolved"
	TicketStatusClosed          TicketStatus = "closed"
)

// AllStatuses lists every ticket status in display order.
var AllStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusApprovalPending,
	TicketStatusApproved,
	TicketStatusRejected,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// ValidStatus reports whether s is a known ticket status.
func ValidStatus(s TicketStatus) bool {
	for _, candidate := range AllStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityUrgent TicketPriority = "urgent"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityLow    TicketPriority = "low"
)

// AllPriorities lists every priority in descending urgency.
var AllPriorities = []TicketPriority{
	TicketPriorityUrgent,
	TicketPriorityHigh,
	TicketPriorityMedium,
	TicketPriorityLow,
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p TicketPriority) bool {
	for _, candidate := range AllPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for support requests. TicketID is the stable,
// human-facing sequential number; ID is the internal storage identifier.
type Ticket struct {
	ID              string
	TicketID        int64
	Title           string
	Description     string
	Category        string
	Priority        TicketPriority
	Status          TicketStatus
	OrganizationID  string
	DepartmentID    *string
	CreatorID       string
	AssigneeID      *string
	ApprovedByID    *string
	ApprovedAt      *time.Time
	RejectionReason string
	DueDate         *time.Time
	ResponseDueDate *time.Time
	SLAResponseHrs  *float64
	SLAResolveHrs   *float64
	Solution        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
