package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// StatsScope narrows aggregate queries the same way ticket listing is
// narrowed for a role. Nil fields mean "no restriction".
type StatsScope struct {
	OrganizationID *string
	DepartmentID   *string
	CreatorID      *string
}

// StatsRepository computes dashboard aggregates in the database rather
// than loading every ticket into memory.
type StatsRepository interface {
	TotalCount(ctx context.Context, scope StatsScope) (int, error)
	StatusCounts(ctx context.Context, scope StatsScope) (map[domain.TicketStatus]int, error)
	PriorityCounts(ctx context.Context, scope StatsScope) (map[domain.TicketPriority]int, error)
	OverdueCount(ctx context.Context, scope StatsScope, now time.Time) (int, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository builds the repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

func scopeClause(scope StatsScope) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if scope.OrganizationID != nil {
		args = append(args, *scope.OrganizationID)
		clauses = append(clauses, fmt.Sprintf("organization_id=$%d", len(args)))
	}
	if scope.DepartmentID != nil {
		args = append(args, *scope.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if scope.CreatorID != nil {
		args = append(args, *scope.CreatorID)
		clauses = append(clauses, fmt.Sprintf("creator_id=$%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func (r *statsRepository) TotalCount(ctx context.Context, scope StatsScope) (int, error) {
	where, args := scopeClause(scope)
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE `+where, args...).Scan(&total)
	return total, err
}

func (r *statsRepository) StatusCounts(ctx context.Context, scope StatsScope) (map[domain.TicketStatus]int, error) {
	where, args := scopeClause(scope)
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tickets WHERE `+where+` GROUP BY status`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int)
	for rows.Next() {
		var status domain.TicketStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *statsRepository) PriorityCounts(ctx context.Context, scope StatsScope) (map[domain.TicketPriority]int, error) {
	where, args := scopeClause(scope)
	rows, err := r.pool.Query(ctx, `SELECT priority, COUNT(*) FROM tickets WHERE `+where+` GROUP BY priority`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketPriority]int)
	for rows.Next() {
		var priority domain.TicketPriority
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		counts[priority] = count
	}
	return counts, rows.Err()
}

func (r *statsRepository) OverdueCount(ctx context.Context, scope StatsScope, now time.Time) (int, error) {
	where, args := scopeClause(scope)
	args = append(args, now)
	query := fmt.Sprintf(
		`SELECT COUNT(*) FROM tickets WHERE %s AND status IN ('open','in-progress') AND due_date IS NOT NULL AND due_date < $%d`,
		where, len(args))
	var total int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&total)
	return total, err
}
