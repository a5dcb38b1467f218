package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/sla"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Budget is the pair of time budgets applied to a ticket at creation.
type Budget struct {
	ResponseHours   float64
	ResolutionHours float64
}

// PolicyInput carries create/update fields for an SLA policy. Budgets
// arrive as the (hours, minutes) pairs users edit; the service encodes
// them to fractional hours before storage.
type PolicyInput struct {
	Name              string
	OrganizationID    *string
	Priority          domain.TicketPriority
	ResponseHours     int
	ResponseMinutes   int
	ResolutionHours   int
	ResolutionMinutes int
	Description       string
	IsActive          bool
}

// SLAService manages response/resolution policies and resolves the
// budget to apply to a new ticket.
type SLAService struct {
	policies repository.SLAPolicyRepository
	defaults config.SLAConfig
	logger   *zap.Logger
}

// NewSLAService builds the service.
func NewSLAService(policies repository.SLAPolicyRepository, defaults config.SLAConfig, logger *zap.Logger) *SLAService {
	return &SLAService{policies: policies, defaults: defaults, logger: logger}
}

// CreatePolicy validates and stores a policy. Only admins manage
// policies.
func (s *SLAService) CreatePolicy(ctx context.Context, actor *domain.User, input PolicyInput) (*domain.SLAPolicy, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	policy, err := s.buildPolicy(input)
	if err != nil {
		return nil, err
	}
	if err := s.policies.Create(ctx, policy); err != nil {
		if errors.Is(err, repository.ErrDuplicatePolicy) {
			return nil, errorutil.NewConflict("a policy already exists for this organization and priority", map[string]any{
				"priority": input.Priority,
			})
		}
		return nil, errorutil.MapError(err)
	}
	return policy, nil
}

// UpdatePolicy replaces a stored policy's fields.
func (s *SLAService) UpdatePolicy(ctx context.Context, actor *domain.User, id string, input PolicyInput) (*domain.SLAPolicy, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	existing, err := s.policies.GetByID(ctx, id)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	policy, err := s.buildPolicy(input)
	if err != nil {
		return nil, err
	}
	policy.ID = existing.ID
	policy.CreatedAt = existing.CreatedAt
	if err := s.policies.Update(ctx, policy); err != nil {
		if errors.Is(err, repository.ErrDuplicatePolicy) {
			return nil, errorutil.NewConflict("a policy already exists for this organization and priority", map[string]any{
				"priority": input.Priority,
			})
		}
		return nil, errorutil.MapError(err)
	}
	return policy, nil
}

// DeletePolicy removes a policy.
func (s *SLAService) DeletePolicy(ctx context.Context, actor *domain.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.policies.Delete(ctx, id); err != nil {
		return errorutil.MapError(err)
	}
	return nil
}

// ListPolicies returns the policies visible to the actor's organization,
// including the global fallbacks.
func (s *SLAService) ListPolicies(ctx context.Context, actor *domain.User) ([]domain.SLAPolicy, error) {
	if actor == nil {
		return nil, errorutil.NewUnauthorized("authentication required")
	}
	org := actor.OrganizationID
	policies, err := s.policies.List(ctx, &org)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return policies, nil
}

// BudgetFor resolves the time budgets for a new ticket: the most
// specific active policy wins, then the configured defaults.
func (s *SLAService) BudgetFor(ctx context.Context, organizationID string, priority domain.TicketPriority) (Budget, error) {
	policy, err := s.policies.FindForScope(ctx, organizationID, priority)
	if err != nil {
		return Budget{}, errorutil.MapError(err)
	}
	if policy == nil {
		return Budget{
			ResponseHours:   s.defaults.DefaultResponseHours,
			ResolutionHours: s.defaults.DefaultResolutionHours,
		}, nil
	}
	return Budget{
		ResponseHours:   policy.ResponseHours,
		ResolutionHours: policy.ResolutionHours,
	}, nil
}

func (s *SLAService) buildPolicy(input PolicyInput) (*domain.SLAPolicy, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errorutil.NewValidationError("policy name is required", nil)
	}
	if !domain.ValidPriority(input.Priority) {
		return nil, errorutil.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}
	if err := sla.ValidateParts(input.ResponseHours, input.ResponseMinutes); err != nil {
		return nil, err
	}
	if err := sla.ValidateParts(input.ResolutionHours, input.ResolutionMinutes); err != nil {
		return nil, err
	}

	response := sla.FromParts(input.ResponseHours, input.ResponseMinutes)
	resolution := sla.FromParts(input.ResolutionHours, input.ResolutionMinutes)
	if err := sla.ValidateBudget("response_hours", response); err != nil {
		return nil, err
	}
	if err := sla.ValidateBudget("resolution_hours", resolution); err != nil {
		return nil, err
	}

	now := time.Now()
	return &domain.SLAPolicy{
		Name:            strings.TrimSpace(input.Name),
		OrganizationID:  input.OrganizationID,
		Priority:        input.Priority,
		ResponseHours:   response,
		ResolutionHours: resolution,
		IsActive:        input.IsActive,
		Description:     input.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func requireAdmin(actor *domain.User) error {
	if actor == nil {
		return errorutil.NewUnauthorized("authentication required")
	}
	if actor.Role != domain.RoleAdmin {
		return errorutil.NewForbidden("administrator role required")
	}
	return nil
}
