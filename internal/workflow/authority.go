package workflow

import (
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Rights describes what a role may do to ticket status. The authority is
// a lookup table keyed by role rather than conditionals scattered through
// handlers, so the matrix is testable on its own.
type Rights struct {
	// DirectSet allows setting status to any valid value.
	DirectSet bool
	// Decide allows the approve/reject sub-protocol on approval-pending
	// tickets within the actor's department.
	Decide bool
}

var roleRights = map[domain.UserRole]Rights{
	domain.RoleAdmin:          {DirectSet: true},
	domain.RoleAgent:          {DirectSet: true},
	domain.RoleTechnician:     {DirectSet: true},
	domain.RoleDepartmentHead: {Decide: true},
	domain.RoleUser:           {},
}

// RightsFor returns the transition rights for a role. Unknown roles have
// no rights.
func RightsFor(role domain.UserRole) Rights {
	return roleRights[role]
}

// CanSetStatus reports whether the role may set a ticket's status
// directly, independent of the target value.
func CanSetStatus(role domain.UserRole) bool {
	return roleRights[role].DirectSet
}

// SetStatus moves a ticket to the requested status on behalf of the
// actor. reason is consulted only when the target status is rejected,
// where a non-blank value is mandatory so the rejected invariant holds.
func SetStatus(ticket *domain.Ticket, actor *domain.User, next domain.TicketStatus, reason string, now time.Time) error {
	if !domain.ValidStatus(next) {
		return apperrors.NewValidationError("unknown ticket status", map[string]any{"status": next})
	}
	if actor == nil || !CanSetStatus(actor.Role) {
		return apperrors.NewForbidden("role may not change ticket status")
	}
	if next == domain.TicketStatusApprovalPending && ticket.DepartmentID == nil {
		return apperrors.NewValidationError("ticket needs a department before it can await approval", nil)
	}

	switch next {
	case domain.TicketStatusApproved:
		stampDecision(ticket, actor.ID, now)
		ticket.RejectionReason = ""
	case domain.TicketStatusRejected:
		if strings.TrimSpace(reason) == "" {
			return apperrors.NewValidationError("rejection reason is required", nil)
		}
		stampDecision(ticket, actor.ID, now)
		ticket.RejectionReason = strings.TrimSpace(reason)
	default:
		// approvedBy/approvedAt are set iff status is approved or rejected.
		ticket.ApprovedByID = nil
		ticket.ApprovedAt = nil
		ticket.RejectionReason = ""
	}

	ticket.Status = next
	ticket.UpdatedAt = now
	return nil
}

// Approve executes the department-head approval decision.
func Approve(ticket *domain.Ticket, actor *domain.User, now time.Time) error {
	if err := checkDecision(ticket, actor); err != nil {
		return err
	}
	stampDecision(ticket, actor.ID, now)
	ticket.RejectionReason = ""
	ticket.Status = domain.TicketStatusApproved
	ticket.UpdatedAt = now
	return nil
}

// Reject executes the department-head rejection decision. The reason is
// mandatory and stored on the ticket.
func Reject(ticket *domain.Ticket, actor *domain.User, reason string, now time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return apperrors.NewValidationError("rejection reason is required", nil)
	}
	if err := checkDecision(ticket, actor); err != nil {
		return err
	}
	stampDecision(ticket, actor.ID, now)
	ticket.RejectionReason = strings.TrimSpace(reason)
	ticket.Status = domain.TicketStatusRejected
	ticket.UpdatedAt = now
	return nil
}

func checkDecision(ticket *domain.Ticket, actor *domain.User) error {
	if actor == nil || !roleRights[actor.Role].Decide {
		return apperrors.NewForbidden("only department heads decide approvals")
	}
	if actor.DepartmentID == nil {
		return apperrors.NewForbidden("no department assigned")
	}
	if ticket.DepartmentID == nil || *ticket.DepartmentID != *actor.DepartmentID {
		return apperrors.NewForbidden("ticket belongs to another department")
	}
	if ticket.Status != domain.TicketStatusApprovalPending {
		return apperrors.NewValidationError("only approval-pending tickets can be decided", map[string]any{"status": ticket.Status})
	}
	return nil
}

func stampDecision(ticket *domain.Ticket, actorID string, now time.Time) {
	approvedBy := actorID
	approvedAt := now
	ticket.ApprovedByID = &approvedBy
	ticket.ApprovedAt = &approvedAt
}
