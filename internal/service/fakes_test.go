package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type fakeTicketRepo struct {
	tickets map[int64]*domain.Ticket
	nextSeq int64
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[int64]*domain.Ticket), nextSeq: 1000}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.TicketID = r.nextSeq
	ticket.ID = fmt.Sprintf("id-%d", r.nextSeq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.nextSeq++
	stored := *ticket
	r.tickets[ticket.TicketID] = &stored
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.TicketID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *ticket
	r.tickets[ticket.TicketID] = &stored
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	for _, ticket := range r.tickets {
		if ticket.ID == id {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) GetByTicketID(_ context.Context, number int64) (*domain.Ticket, error) {
	ticket, ok := r.tickets[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.OrganizationID != nil && ticket.OrganizationID != *filter.OrganizationID {
			continue
		}
		if filter.DepartmentID != nil && (ticket.DepartmentID == nil || *ticket.DepartmentID != *filter.DepartmentID) {
			continue
		}
		if filter.CreatorID != nil && ticket.CreatorID != *filter.CreatorID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type fakeCommentRepo struct {
	comments []domain.Comment
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	comment.ID = fmt.Sprintf("c-%d", len(r.comments)+1)
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	var result []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			result = append(result, comment)
		}
	}
	return result, nil
}

type fakeUserRepo struct {
	users []domain.User
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.users = append(r.users, *user)
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	for i := range r.users {
		if r.users[i].ID == user.ID {
			r.users[i] = *user
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for i := range r.users {
		if r.users[i].ID == id {
			copied := r.users[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for i := range r.users {
		if r.users[i].Email == email {
			copied := r.users[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListMentionable(_ context.Context, organizationID string) ([]domain.User, error) {
	var result []domain.User
	for _, user := range r.users {
		if user.OrganizationID == organizationID && user.IsActive {
			result = append(result, user)
		}
	}
	return result, nil
}

type fakeDeptRepo struct {
	departments []domain.Department
}

func (r *fakeDeptRepo) Create(_ context.Context, dept *domain.Department) error {
	r.departments = append(r.departments, *dept)
	return nil
}

func (r *fakeDeptRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	for i := range r.departments {
		if r.departments[i].ID == id {
			copied := r.departments[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeDeptRepo) ListByOrganization(_ context.Context, organizationID string) ([]domain.Department, error) {
	var result []domain.Department
	for _, dept := range r.departments {
		if dept.OrganizationID == organizationID {
			result = append(result, dept)
		}
	}
	return result, nil
}

type fakePolicyRepo struct {
	policies []domain.SLAPolicy
}

func (r *fakePolicyRepo) Create(_ context.Context, policy *domain.SLAPolicy) error {
	for _, existing := range r.policies {
		if existing.Priority == policy.Priority && samePolicyScope(existing.OrganizationID, policy.OrganizationID) {
			return repository.ErrDuplicatePolicy
		}
	}
	policy.ID = fmt.Sprintf("p-%d", len(r.policies)+1)
	r.policies = append(r.policies, *policy)
	return nil
}

func (r *fakePolicyRepo) Update(_ context.Context, policy *domain.SLAPolicy) error {
	for i := range r.policies {
		if r.policies[i].ID == policy.ID {
			r.policies[i] = *policy
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakePolicyRepo) Delete(_ context.Context, id string) error {
	for i := range r.policies {
		if r.policies[i].ID == id {
			r.policies = append(r.policies[:i], r.policies[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakePolicyRepo) GetByID(_ context.Context, id string) (*domain.SLAPolicy, error) {
	for i := range r.policies {
		if r.policies[i].ID == id {
			copied := r.policies[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakePolicyRepo) List(_ context.Context, _ *string) ([]domain.SLAPolicy, error) {
	return append([]domain.SLAPolicy(nil), r.policies...), nil
}

func (r *fakePolicyRepo) FindForScope(_ context.Context, organizationID string, priority domain.TicketPriority) (*domain.SLAPolicy, error) {
	var global *domain.SLAPolicy
	for i := range r.policies {
		policy := &r.policies[i]
		if policy.Priority != priority || !policy.IsActive {
			continue
		}
		if policy.OrganizationID != nil && *policy.OrganizationID == organizationID {
			copied := *policy
			return &copied, nil
		}
		if policy.OrganizationID == nil {
			global = policy
		}
	}
	if global != nil {
		copied := *global
		return &copied, nil
	}
	return nil, nil
}

func samePolicyScope(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type fakeStatsRepo struct {
	total    int
	status   map[domain.TicketStatus]int
	priority map[domain.TicketPriority]int
	overdue  int
	scopes   []repository.StatsScope
}

func (r *fakeStatsRepo) TotalCount(_ context.Context, scope repository.StatsScope) (int, error) {
	r.scopes = append(r.scopes, scope)
	return r.total, nil
}

func (r *fakeStatsRepo) StatusCounts(_ context.Context, _ repository.StatsScope) (map[domain.TicketStatus]int, error) {
	return r.status, nil
}

func (r *fakeStatsRepo) PriorityCounts(_ context.Context, _ repository.StatsScope) (map[domain.TicketPriority]int, error) {
	return r.priority, nil
}

func (r *fakeStatsRepo) OverdueCount(_ context.Context, _ repository.StatsScope, _ time.Time) (int, error) {
	return r.overdue, nil
}

// testEnv wires a TicketService over fakes with a fixed clock.
type testEnv struct {
	tickets    *fakeTicketRepo
	comments   *fakeCommentRepo
	users      *fakeUserRepo
	depts      *fakeDeptRepo
	policies   *fakePolicyRepo
	dispatcher *events.Dispatcher
	service    *TicketService
	now        time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		tickets:    newFakeTicketRepo(),
		comments:   &fakeCommentRepo{},
		users:      &fakeUserRepo{},
		depts:      &fakeDeptRepo{},
		policies:   &fakePolicyRepo{},
		dispatcher: events.NewDispatcher(zap.NewNop()),
		now:        time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	slaService := NewSLAService(env.policies, config.SLAConfig{
		DefaultResponseHours:   4,
		DefaultResolutionHours: 24,
	}, zap.NewNop())
	env.service = NewTicketService(TicketServiceDeps{
		Tickets:     env.tickets,
		Comments:    env.comments,
		Users:       env.users,
		Departments: env.depts,
		SLA:         slaService,
		Dispatcher:  env.dispatcher,
		Logger:      zap.NewNop(),
		Clock:       func() time.Time { return env.now },
	})
	return env
}
