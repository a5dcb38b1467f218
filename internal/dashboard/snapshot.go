// Package dashboard reduces ticket collections into the derived counts
// the dashboard displays and keeps them fresh on a polling cadence.
package dashboard

import (
	"math"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/sla"
)

// PriorityStat pairs a priority count with its share of the total.
type PriorityStat struct {
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// Snapshot is a derived, non-persisted aggregate over the tickets in
// scope. StatusCounts always carries every status so consumers never
// probe for missing keys.
type Snapshot struct {
	Total          int                                    `json:"total"`
	StatusCounts   map[domain.TicketStatus]int            `json:"status_counts"`
	PriorityCounts map[domain.TicketPriority]PriorityStat `json:"priority_counts"`
	Overdue        int                                    `json:"overdue"`
	TakenAt        time.Time                              `json:"taken_at"`
}

// Zero returns the documented all-zero snapshot used when a scope is
// empty or a refresh fails.
func Zero(now time.Time) Snapshot {
	snapshot := Snapshot{
		StatusCounts:   make(map[domain.TicketStatus]int, len(domain.AllStatuses)),
		PriorityCounts: make(map[domain.TicketPriority]PriorityStat, len(domain.AllPriorities)),
		TakenAt:        now,
	}
	for _, status := range domain.AllStatuses {
		snapshot.StatusCounts[status] = 0
	}
	for _, priority := range domain.AllPriorities {
		snapshot.PriorityCounts[priority] = PriorityStat{}
	}
	return snapshot
}

// Build reduces a ticket collection into a snapshot. Overdue derivation
// is recomputed against now on every call, never cached on the tickets.
func Build(tickets []domain.Ticket, now time.Time) Snapshot {
	snapshot := Zero(now)
	snapshot.Total = len(tickets)

	priorityTotals := make(map[domain.TicketPriority]int, len(domain.AllPriorities))
	for _, ticket := range tickets {
		snapshot.StatusCounts[ticket.Status]++
		priorityTotals[ticket.Priority]++
		if sla.IsOverdue(ticket.DueDate, ticket.Status, now) {
			snapshot.Overdue++
		}
	}
	snapshot.PriorityCounts = WithPercentages(priorityTotals)
	return snapshot
}

// WithPercentages derives percentage shares from raw priority counts. A
// zero total yields all-zero percentages rather than dividing by zero.
func WithPercentages(counts map[domain.TicketPriority]int) map[domain.TicketPriority]PriorityStat {
	total := 0
	for _, count := range counts {
		total += count
	}
	stats := make(map[domain.TicketPriority]PriorityStat, len(domain.AllPriorities))
	for _, priority := range domain.AllPriorities {
		stats[priority] = PriorityStat{
			Count:      counts[priority],
			Percentage: Percentage(counts[priority], total),
		}
	}
	return stats
}

// Percentage returns round(100*count/total), or 0 when total is 0.
func Percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(count) / float64(total)))
}
