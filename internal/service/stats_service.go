package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/dashboard"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// StatsServiceDeps bundles the collaborators of StatsService.
type StatsServiceDeps struct {
	Stats   repository.StatsRepository
	Tickets repository.TicketRepository
	Redis   *redis.Client
	Config  config.DashboardConfig
	Logger  *zap.Logger
	Clock   func() time.Time
}

// DashboardView is the snapshot plus the per-user extras the dashboard
// page shows alongside the counts.
type DashboardView struct {
	Snapshot      dashboard.Snapshot
	RecentTickets []domain.Ticket
	MyOpenTickets int
}

// StatsService computes role-scoped dashboard snapshots and caches them
// briefly in Redis so a burst of dashboard polls hits the database once.
type StatsService struct {
	deps StatsServiceDeps
}

// NewStatsService builds the service.
func NewStatsService(deps StatsServiceDeps) *StatsService {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &StatsService{deps: deps}
}

// DashboardSnapshot returns the snapshot for the actor's scope.
// Privileged roles aggregate the organization, department heads their
// department, and everyone else their own tickets. A department head
// with no department gets the all-zero snapshot.
func (s *StatsService) DashboardSnapshot(ctx context.Context, actor *domain.User) (dashboard.Snapshot, error) {
	if actor == nil {
		return dashboard.Snapshot{}, errorutil.NewUnauthorized("authentication required")
	}

	scope := repository.StatsScope{OrganizationID: &actor.OrganizationID}
	switch {
	case actor.Role.Privileged():
		// org-wide
	case actor.Role == domain.RoleDepartmentHead:
		if actor.DepartmentID == nil {
			return dashboard.Zero(s.deps.Clock()), nil
		}
		scope.DepartmentID = actor.DepartmentID
	default:
		scope.CreatorID = &actor.ID
	}

	key := s.cacheKey(scope)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	snapshot, err := s.compute(ctx, scope)
	if err != nil {
		return dashboard.Snapshot{}, err
	}
	s.toCache(ctx, key, snapshot)
	return snapshot, nil
}

// Dashboard combines the scoped snapshot with the most recent tickets
// in scope and the actor's own open-ticket count.
func (s *StatsService) Dashboard(ctx context.Context, actor *domain.User) (DashboardView, error) {
	snapshot, err := s.DashboardSnapshot(ctx, actor)
	if err != nil {
		return DashboardView{}, err
	}
	view := DashboardView{Snapshot: snapshot, RecentTickets: []domain.Ticket{}}

	if s.deps.Tickets != nil {
		filter := repository.TicketFilter{OrganizationID: &actor.OrganizationID, Limit: 5}
		switch {
		case actor.Role.Privileged():
		case actor.Role == domain.RoleDepartmentHead:
			if actor.DepartmentID == nil {
				return view, nil
			}
			filter.DepartmentID = actor.DepartmentID
		default:
			filter.CreatorID = &actor.ID
		}
		recent, err := s.deps.Tickets.ListWithFilter(ctx, filter)
		if err != nil {
			return DashboardView{}, errorutil.MapError(err)
		}
		view.RecentTickets = recent
	}

	ownCounts, err := s.deps.Stats.StatusCounts(ctx, repository.StatsScope{
		OrganizationID: &actor.OrganizationID,
		CreatorID:      &actor.ID,
	})
	if err != nil {
		return DashboardView{}, errorutil.MapError(err)
	}
	view.MyOpenTickets = ownCounts[domain.TicketStatusOpen] + ownCounts[domain.TicketStatusInProgress]
	return view, nil
}

// SnapshotSource adapts the organization-wide snapshot to the poller's
// Source interface so a background worker can keep the cache warm.
func (s *StatsService) SnapshotSource(organizationID string) dashboard.Source {
	return dashboard.SourceFunc(func(ctx context.Context) (dashboard.Snapshot, error) {
		scope := repository.StatsScope{OrganizationID: &organizationID}
		snapshot, err := s.compute(ctx, scope)
		if err != nil {
			return dashboard.Snapshot{}, err
		}
		s.toCache(ctx, s.cacheKey(scope), snapshot)
		return snapshot, nil
	})
}

func (s *StatsService) compute(ctx context.Context, scope repository.StatsScope) (dashboard.Snapshot, error) {
	now := s.deps.Clock()
	snapshot := dashboard.Zero(now)

	total, err := s.deps.Stats.TotalCount(ctx, scope)
	if err != nil {
		return dashboard.Snapshot{}, errorutil.MapError(err)
	}
	snapshot.Total = total

	statusCounts, err := s.deps.Stats.StatusCounts(ctx, scope)
	if err != nil {
		return dashboard.Snapshot{}, errorutil.MapError(err)
	}
	for status, count := range statusCounts {
		snapshot.StatusCounts[status] = count
	}

	priorityCounts, err := s.deps.Stats.PriorityCounts(ctx, scope)
	if err != nil {
		return dashboard.Snapshot{}, errorutil.MapError(err)
	}
	snapshot.PriorityCounts = dashboard.WithPercentages(priorityCounts)

	overdue, err := s.deps.Stats.OverdueCount(ctx, scope, now)
	if err != nil {
		return dashboard.Snapshot{}, errorutil.MapError(err)
	}
	snapshot.Overdue = overdue

	return snapshot, nil
}

func (s *StatsService) cacheKey(scope repository.StatsScope) string {
	org, dept, creator := "*", "*", "*"
	if scope.OrganizationID != nil {
		org = *scope.OrganizationID
	}
	if scope.DepartmentID != nil {
		dept = *scope.DepartmentID
	}
	if scope.CreatorID != nil {
		creator = *scope.CreatorID
	}
	return fmt.Sprintf("dashboard:%s:%s:%s", org, dept, creator)
}

func (s *StatsService) fromCache(ctx context.Context, key string) (dashboard.Snapshot, bool) {
	if s.deps.Redis == nil {
		return dashboard.Snapshot{}, false
	}
	raw, err := s.deps.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return dashboard.Snapshot{}, false
	}
	var snapshot dashboard.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return dashboard.Snapshot{}, false
	}
	return snapshot, true
}

func (s *StatsService) toCache(ctx context.Context, key string, snapshot dashboard.Snapshot) {
	if s.deps.Redis == nil {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := s.deps.Redis.Set(ctx, key, raw, s.deps.Config.CacheTTL()).Err(); err != nil {
		s.deps.Logger.Warn("dashboard cache write failed", zap.Error(err))
	}
}
