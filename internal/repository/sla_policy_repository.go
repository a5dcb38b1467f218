package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ErrDuplicatePolicy is returned when a policy already exists for the
// same (organization, priority) scope.
var ErrDuplicatePolicy = errors.New("sla policy already exists for scope")

// SLAPolicyRepository stores response/resolution time budgets.
type SLAPolicyRepository interface {
	Create(ctx context.Context, policy *domain.SLAPolicy) error
	Update(ctx context.Context, policy *domain.SLAPolicy) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.SLAPolicy, error)
	List(ctx context.Context, organizationID *string) ([]domain.SLAPolicy, error)
	// FindForScope returns the active policy for the organization and
	// priority, or nil when neither an org-scoped nor a global policy
	// exists.
	FindForScope(ctx context.Context, organizationID string, priority domain.TicketPriority) (*domain.SLAPolicy, error)
}

type slaPolicyRepository struct {
	pool *pgxpool.Pool
}

// NewSLAPolicyRepository builds the repository.
func NewSLAPolicyRepository(pool *pgxpool.Pool) SLAPolicyRepository {
	return &slaPolicyRepository{pool: pool}
}

const slaColumns = `id, name, organization_id, priority, response_hours, resolution_hours, is_active, description, created_at, updated_at`

func (r *slaPolicyRepository) Create(ctx context.Context, policy *domain.SLAPolicy) error {
	const query = `
        INSERT INTO sla_policies (name, organization_id, priority, response_hours, resolution_hours, is_active, description)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		policy.Name,
		policy.OrganizationID,
		policy.Priority,
		policy.ResponseHours,
		policy.ResolutionHours,
		policy.IsActive,
		policy.Description,
	).Scan(&policy.ID, &policy.CreatedAt, &policy.UpdatedAt)
	return mapUniqueViolation(err)
}

func (r *slaPolicyRepository) Update(ctx context.Context, policy *domain.SLAPolicy) error {
	const query = `
        UPDATE sla_policies SET name=$1, organization_id=$2, priority=$3,
            response_hours=$4, resolution_hours=$5, is_active=$6, description=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		policy.Name,
		policy.OrganizationID,
		policy.Priority,
		policy.ResponseHours,
		policy.ResolutionHours,
		policy.IsActive,
		policy.Description,
		policy.ID,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *slaPolicyRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sla_policies WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *slaPolicyRepository) GetByID(ctx context.Context, id string) (*domain.SLAPolicy, error) {
	query := `SELECT ` + slaColumns + ` FROM sla_policies WHERE id=$1`
	return scanPolicy(r.pool.QueryRow(ctx, query, id))
}

func (r *slaPolicyRepository) List(ctx context.Context, organizationID *string) ([]domain.SLAPolicy, error) {
	query := `SELECT ` + slaColumns + ` FROM sla_policies`
	args := []any{}
	if organizationID != nil {
		query += ` WHERE organization_id=$1 OR organization_id IS NULL`
		args = append(args, *organizationID)
	}
	query += ` ORDER BY priority ASC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLAPolicy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *policy)
	}
	return result, rows.Err()
}

func (r *slaPolicyRepository) FindForScope(ctx context.Context, organizationID string, priority domain.TicketPriority) (*domain.SLAPolicy, error) {
	// Org-scoped policies win over the global fallback.
	const query = `
        SELECT ` + slaColumns + ` FROM sla_policies
        WHERE priority=$2 AND is_active = TRUE
          AND (organization_id=$1 OR organization_id IS NULL)
        ORDER BY organization_id NULLS LAST
        LIMIT 1`
	policy, err := scanPolicy(r.pool.QueryRow(ctx, query, organizationID, priority))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return policy, nil
}

func scanPolicy(row rowScanner) (*domain.SLAPolicy, error) {
	var policy domain.SLAPolicy
	if err := row.Scan(
		&policy.ID,
		&policy.Name,
		&policy.OrganizationID,
		&policy.Priority,
		&policy.ResponseHours,
		&policy.ResolutionHours,
		&policy.IsActive,
		&policy.Description,
		&policy.CreatedAt,
		&policy.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &policy, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicatePolicy
	}
	return err
}
