package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/mention"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/sla"
	"github.com/spec-kit/helpdesk-service/internal/workflow"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// CreateTicketInput carries the client-supplied fields for a new ticket.
// Status, ticket number and SLA budgets are always server-assigned.
type CreateTicketInput struct {
	Title        string
	Description  string
	Category     string
	Priority     domain.TicketPriority
	DepartmentID *string
}

// UpdateTicketInput is a partial update; nil fields are untouched.
type UpdateTicketInput struct {
	Status       *domain.TicketStatus
	Reason       string
	Priority     *domain.TicketPriority
	AssigneeID   *string
	DepartmentID *string
	DueDate      *time.Time
	Solution     *string
}

// ListTicketsInput narrows a ticket listing within the actor's scope.
type ListTicketsInput struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Search     string
	Limit      int
	Offset     int
}

// CommentView pairs a stored comment with its rendered segments and the
// directory entries its mentions resolved to.
type CommentView struct {
	Comment  domain.Comment
	Author   *domain.User
	Mentions []domain.User
	Segments []mention.Segment
}

// TicketServiceDeps bundles the collaborators of TicketService.
type TicketServiceDeps struct {
	Tickets     repository.TicketRepository
	Comments    repository.CommentRepository
	Users       repository.UserRepository
	Departments repository.DepartmentRepository
	SLA         *SLAService
	Dispatcher  *events.Dispatcher
	Logger      *zap.Logger
	Clock       func() time.Time
}

// TicketService implements the ticket lifecycle: creation with SLA
// deadline assignment, role-scoped listing, status transitions, the
// approval protocol, and comment threads with mention resolution.
type TicketService struct {
	deps TicketServiceDeps
}

// NewTicketService builds the service.
func NewTicketService(deps TicketServiceDeps) *TicketService {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &TicketService{deps: deps}
}

// Create opens a new ticket in the actor's organization and stamps the
// SLA deadlines derived from the matching policy.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input CreateTicketInput) (*domain.Ticket, error) {
	if actor == nil {
		return nil, errorutil.NewUnauthorized("authentication required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, errorutil.NewValidationError("title is required", nil)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, errorutil.NewValidationError("description is required", nil)
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(input.Priority) {
		return nil, errorutil.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}
	if input.DepartmentID != nil {
		dept, err := s.deps.Departments.GetByID(ctx, *input.DepartmentID)
		if err != nil {
			return nil, errorutil.NewValidationError("unknown department", nil)
		}
		if dept.OrganizationID != actor.OrganizationID {
			return nil, errorutil.NewForbidden("department belongs to another organization")
		}
	}

	now := s.deps.Clock()
	budget, err := s.deps.SLA.BudgetFor(ctx, actor.OrganizationID, input.Priority)
	if err != nil {
		return nil, err
	}
	responseDue := sla.Deadline(now, budget.ResponseHours)
	resolveDue := sla.Deadline(now, budget.ResolutionHours)

	ticket := &domain.Ticket{
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		Category:        input.Category,
		Priority:        input.Priority,
		Status:          domain.TicketStatusOpen,
		OrganizationID:  actor.OrganizationID,
		DepartmentID:    input.DepartmentID,
		CreatorID:       actor.ID,
		DueDate:         &resolveDue,
		ResponseDueDate: &responseDue,
		SLAResponseHrs:  &budget.ResponseHours,
		SLAResolveHrs:   &budget.ResolutionHours,
	}
	if err := s.deps.Tickets.Create(ctx, ticket); err != nil {
		return nil, errorutil.MapError(err)
	}

	s.deps.Logger.Info("ticket created",
		zap.Int64("ticket_id", ticket.TicketID),
		zap.String("priority", string(ticket.Priority)))
	s.deps.Dispatcher.Publish(events.EventTicketCreated, events.TicketCreatedPayload{
		Ticket: ticket,
		Actor:  events.Actor{UserID: actor.ID, Role: actor.Role},
		At:     now,
	})
	return ticket, nil
}

// List returns the tickets the actor may see, newest first. Privileged
// roles see the whole organization; everyone else sees what they created.
func (s *TicketService) List(ctx context.Context, actor *domain.User, input ListTicketsInput) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, errorutil.NewUnauthorized("authentication required")
	}
	filter := repository.TicketFilter{
		OrganizationID: &actor.OrganizationID,
		Statuses:       input.Statuses,
		Priorities:     input.Priorities,
		Limit:          input.Limit,
		Offset:         input.Offset,
	}
	if input.Search != "" {
		filter.SearchTerm = &input.Search
	}
	switch {
	case actor.Role.Privileged():
		// org-wide
	case actor.Role == domain.RoleDepartmentHead:
		if actor.DepartmentID == nil {
			return []domain.Ticket{}, nil
		}
		filter.DepartmentID = actor.DepartmentID
	default:
		filter.CreatorID = &actor.ID
	}

	tickets, err := s.deps.Tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return tickets, nil
}

// ApprovalQueue lists the approval-pending tickets awaiting the
// department head's decision. A head with no department has an empty
// queue rather than an error.
func (s *TicketService) ApprovalQueue(ctx context.Context, actor *domain.User) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, errorutil.NewUnauthorized("authentication required")
	}
	if actor.Role != domain.RoleDepartmentHead && actor.Role != domain.RoleAdmin {
		return nil, errorutil.NewForbidden("approval queue is for department heads")
	}
	filter := repository.TicketFilter{
		OrganizationID: &actor.OrganizationID,
		Statuses:       []domain.TicketStatus{domain.TicketStatusApprovalPending},
	}
	if actor.Role == domain.RoleDepartmentHead {
		if actor.DepartmentID == nil {
			return []domain.Ticket{}, nil
		}
		filter.DepartmentID = actor.DepartmentID
	}
	tickets, err := s.deps.Tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return tickets, nil
}

// GetByNumber fetches a ticket by its human-facing number, enforcing the
// actor's visibility.
func (s *TicketService) GetByNumber(ctx context.Context, actor *domain.User, number int64) (*domain.Ticket, error) {
	ticket, err := s.deps.Tickets.GetByTicketID(ctx, number)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	if err := s.checkAccess(actor, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Update applies a partial update. Status changes run through the
// transition authority; other fields require a privileged role.
func (s *TicketService) Update(ctx context.Context, actor *domain.User, number int64, input UpdateTicketInput) (*domain.Ticket, error) {
	ticket, err := s.GetByNumber(ctx, actor, number)
	if err != nil {
		return nil, err
	}
	now := s.deps.Clock()
	previousStatus := ticket.Status

	if input.Status != nil {
		if err := workflow.SetStatus(ticket, actor, *input.Status, input.Reason, now); err != nil {
			return nil, err
		}
	}
	if input.Priority != nil || input.AssigneeID != nil || input.DepartmentID != nil || input.DueDate != nil || input.Solution != nil {
		if !actor.Role.Privileged() {
			return nil, errorutil.NewForbidden("role may not edit ticket fields")
		}
		if input.Priority != nil {
			if !domain.ValidPriority(*input.Priority) {
				return nil, errorutil.NewValidationError("unknown priority", map[string]any{"priority": *input.Priority})
			}
			ticket.Priority = *input.Priority
		}
		if input.AssigneeID != nil {
			ticket.AssigneeID = input.AssigneeID
		}
		if input.DepartmentID != nil {
			ticket.DepartmentID = input.DepartmentID
		}
		if input.DueDate != nil {
			ticket.DueDate = input.DueDate
		}
		if input.Solution != nil {
			ticket.Solution = *input.Solution
		}
		ticket.UpdatedAt = now
	}

	if err := s.deps.Tickets.Update(ctx, ticket); err != nil {
		return nil, errorutil.MapError(err)
	}

	if input.Status != nil && previousStatus != ticket.Status {
		s.publishStatusChange(ticket, previousStatus, input.Reason, actor, now)
	}
	return ticket, nil
}

// Approve records the department head's approval of an
// approval-pending ticket.
func (s *TicketService) Approve(ctx context.Context, actor *domain.User, number int64) (*domain.Ticket, error) {
	ticket, err := s.deps.Tickets.GetByTicketID(ctx, number)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	previousStatus := ticket.Status
	now := s.deps.Clock()
	if err := workflow.Approve(ticket, actor, now); err != nil {
		return nil, err
	}
	if err := s.deps.Tickets.Update(ctx, ticket); err != nil {
		return nil, errorutil.MapError(err)
	}
	s.publishStatusChange(ticket, previousStatus, "", actor, now)
	return ticket, nil
}

// Reject records the department head's rejection. The reason is
// mandatory and stored on the ticket.
func (s *TicketService) Reject(ctx context.Context, actor *domain.User, number int64, reason string) (*domain.Ticket, error) {
	ticket, err := s.deps.Tickets.GetByTicketID(ctx, number)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	previousStatus := ticket.Status
	now := s.deps.Clock()
	if err := workflow.Reject(ticket, actor, reason, now); err != nil {
		return nil, err
	}
	if err := s.deps.Tickets.Update(ctx, ticket); err != nil {
		return nil, errorutil.MapError(err)
	}
	s.publishStatusChange(ticket, previousStatus, ticket.RejectionReason, actor, now)
	return ticket, nil
}

// AddComment appends to the ticket's thread, resolving @Name tokens
// against the organization directory at submission time.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, number int64, content string) (*CommentView, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errorutil.NewValidationError("comment content is required", nil)
	}
	ticket, err := s.GetByNumber(ctx, actor, number)
	if err != nil {
		return nil, err
	}

	directory, err := s.deps.Users.ListMentionable(ctx, actor.OrganizationID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	mentioned := mention.Extract(content, directory)
	mentionIDs := make([]string, 0, len(mentioned))
	for _, user := range mentioned {
		mentionIDs = append(mentionIDs, user.ID)
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		AuthorID: actor.ID,
		Content:  content,
		Mentions: mentionIDs,
	}
	if err := s.deps.Comments.Create(ctx, comment); err != nil {
		return nil, errorutil.MapError(err)
	}

	s.deps.Dispatcher.Publish(events.EventTicketCommented, events.CommentedPayload{
		Ticket:           ticket,
		Comment:          comment,
		MentionedUserIDs: mentionIDs,
		Actor:            events.Actor{UserID: actor.ID, Role: actor.Role},
		At:               s.deps.Clock(),
	})

	return &CommentView{
		Comment:  *comment,
		Author:   actor,
		Mentions: mentioned,
		Segments: mention.Render(content, mentioned),
	}, nil
}

// CommentThread returns the ticket's comments with mention tokens
// rendered against the directory entries stored at submission time.
func (s *TicketService) CommentThread(ctx context.Context, actor *domain.User, number int64) ([]CommentView, error) {
	ticket, err := s.GetByNumber(ctx, actor, number)
	if err != nil {
		return nil, err
	}
	comments, err := s.deps.Comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}

	views := make([]CommentView, 0, len(comments))
	userCache := make(map[string]*domain.User)
	for _, comment := range comments {
		mentioned := make([]domain.User, 0, len(comment.Mentions))
		for _, userID := range comment.Mentions {
			user, err := s.lookupUser(ctx, userCache, userID)
			if err != nil {
				continue // deactivated or deleted; token renders as text
			}
			mentioned = append(mentioned, *user)
		}
		author, _ := s.lookupUser(ctx, userCache, comment.AuthorID)
		views = append(views, CommentView{
			Comment:  comment,
			Author:   author,
			Mentions: mentioned,
			Segments: mention.Render(comment.Content, mentioned),
		})
	}
	return views, nil
}

// Directory lists the users the actor can @mention.
func (s *TicketService) Directory(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if actor == nil {
		return nil, errorutil.NewUnauthorized("authentication required")
	}
	users, err := s.deps.Users.ListMentionable(ctx, actor.OrganizationID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return users, nil
}

func (s *TicketService) lookupUser(ctx context.Context, cache map[string]*domain.User, id string) (*domain.User, error) {
	if user, ok := cache[id]; ok {
		return user, nil
	}
	user, err := s.deps.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cache[id] = user
	return user, nil
}

func (s *TicketService) checkAccess(actor *domain.User, ticket *domain.Ticket) error {
	if actor == nil {
		return errorutil.NewUnauthorized("authentication required")
	}
	if ticket.OrganizationID != actor.OrganizationID {
		return errorutil.NewNotFound("ticket", map[string]any{"ticket_id": ticket.TicketID})
	}
	if actor.Role.Privileged() {
		return nil
	}
	if actor.Role == domain.RoleDepartmentHead {
		if actor.DepartmentID != nil && ticket.DepartmentID != nil && *actor.DepartmentID == *ticket.DepartmentID {
			return nil
		}
	}
	if ticket.CreatorID == actor.ID {
		return nil
	}
	if ticket.AssigneeID != nil && *ticket.AssigneeID == actor.ID {
		return nil
	}
	return errorutil.NewForbidden("no access to this ticket")
}

func (s *TicketService) publishStatusChange(ticket *domain.Ticket, from domain.TicketStatus, reason string, actor *domain.User, at time.Time) {
	payload := events.StatusChangedPayload{
		Ticket: ticket,
		From:   from,
		To:     ticket.Status,
		Reason: reason,
		Actor:  events.Actor{UserID: actor.ID, Role: actor.Role},
		At:     at,
	}
	// Exactly one event per transition. Decisions get their dedicated
	// event; everything else gets the generic one.
	switch ticket.Status {
	case domain.TicketStatusApproved:
		s.deps.Dispatcher.Publish(events.EventTicketApproved, payload)
	case domain.TicketStatusRejected:
		s.deps.Dispatcher.Publish(events.EventTicketRejected, payload)
	default:
		s.deps.Dispatcher.Publish(events.EventTicketStatusChanged, payload)
	}
}
