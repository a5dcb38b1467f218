// Package sla converts between the stored fractional-hour SLA budgets and
// the (hours, minutes) pairs humans edit, and derives overdue state.
package sla

import (
	"fmt"
	"math"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Parts is the human-edited form of a fractional-hour duration.
type Parts struct {
	Hours   int
	Minutes int
}

// ToParts splits fractional hours into whole hours and minutes. The
// minutes component is always in [0,59]; carrying 0.9999h rounds up into
// the hour rather than producing 60 minutes.
func ToParts(totalHours float64) Parts {
	if totalHours < 0 {
		totalHours = 0
	}
	hours := int(math.Floor(totalHours))
	minutes := int(math.Round((totalHours - float64(hours)) * 60))
	if minutes >= 60 {
		hours++
		minutes -= 60
	}
	return Parts{Hours: hours, Minutes: minutes}
}

// FromParts combines hours and minutes back into fractional hours.
func FromParts(hours, minutes int) float64 {
	return float64(hours) + float64(minutes)/60
}

// ValidateParts rejects inputs that cannot come from a well-formed form:
// negative hours, or minutes outside [0,59]. Out-of-range minutes are an
// error, never silently clamped.
func ValidateParts(hours, minutes int) error {
	if hours < 0 {
		return apperrors.NewValidationError("hours must not be negative", map[string]any{"hours": hours})
	}
	if minutes < 0 || minutes > 59 {
		return apperrors.NewValidationError("minutes must be between 0 and 59", map[string]any{"minutes": minutes})
	}
	return nil
}

// ValidateBudget rejects non-positive time budgets.
func ValidateBudget(field string, totalHours float64) error {
	if totalHours <= 0 {
		return apperrors.NewValidationError(field+" must be greater than zero", map[string]any{field: totalHours})
	}
	return nil
}

// IsOverdue reports whether a ticket is past its due date while still
// actionable. Pure: callers pass now and recompute on every render rather
// than caching the flag on the ticket.
func IsOverdue(dueDate *time.Time, status domain.TicketStatus, now time.Time) bool {
	if dueDate == nil {
		return false
	}
	if status != domain.TicketStatusOpen && status != domain.TicketStatusInProgress {
		return false
	}
	return dueDate.Before(now)
}

// Deadline computes when a budget of fractional hours elapses from start.
func Deadline(start time.Time, totalHours float64) time.Time {
	return start.Add(time.Duration(totalHours * float64(time.Hour)))
}

// FormatHours renders a fractional-hour budget as "2h 30m", "2h" or "45m".
func FormatHours(totalHours float64) string {
	parts := ToParts(totalHours)
	switch {
	case parts.Hours > 0 && parts.Minutes > 0:
		return fmt.Sprintf("%dh %dm", parts.Hours, parts.Minutes)
	case parts.Hours > 0:
		return fmt.Sprintf("%dh", parts.Hours)
	default:
		return fmt.Sprintf("%dm", parts.Minutes)
	}
}
