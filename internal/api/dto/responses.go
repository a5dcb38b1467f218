package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/dashboard"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/mention"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/sla"
)

// DashboardResponse is the dashboard payload: the aggregate snapshot
// plus the recent tickets in scope and the caller's open count.
type DashboardResponse struct {
	dashboard.Snapshot
	RecentTickets []TicketResponse `json:"recent_tickets"`
	MyOpenTickets int              `json:"my_open_tickets"`
}

// TicketResponse is the wire shape of a ticket. SLABudgets carries both
// the stored fractional hours and the human (hours, minutes) split.
type TicketResponse struct {
	ID              string      `json:"id"`
	TicketID        int64       `json:"ticket_id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Category        string      `json:"category"`
	Priority        string      `json:"priority"`
	Status          string      `json:"status"`
	OrganizationID  string      `json:"organization_id"`
	DepartmentID    *string     `json:"department_id,omitempty"`
	CreatorID       string      `json:"creator_id"`
	AssigneeID      *string     `json:"assignee_id,omitempty"`
	ApprovedByID    *string     `json:"approved_by_id,omitempty"`
	ApprovedAt      *time.Time  `json:"approved_at,omitempty"`
	RejectionReason string      `json:"rejection_reason,omitempty"`
	DueDate         *time.Time  `json:"due_date,omitempty"`
	ResponseDueDate *time.Time  `json:"response_due_date,omitempty"`
	SLABudgets      *SLABudgets `json:"sla_budgets,omitempty"`
	Overdue         bool        `json:"overdue"`
	Solution        string      `json:"solution,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// SLABudgets renders the ticket's time budgets in both encodings.
type SLABudgets struct {
	ResponseHours     float64 `json:"response_hours"`
	ResponseDisplay   string  `json:"response_display"`
	ResolutionHours   float64 `json:"resolution_hours"`
	ResolutionDisplay string  `json:"resolution_display"`
}

// FromTicket maps a domain ticket to its wire shape, deriving the
// overdue flag against now.
func FromTicket(ticket *domain.Ticket, now time.Time) TicketResponse {
	resp := TicketResponse{
		ID:              ticket.ID,
		TicketID:        ticket.TicketID,
		Title:           ticket.Title,
		Description:     ticket.Description,
		Category:        ticket.Category,
		Priority:        string(ticket.Priority),
		Status:          string(ticket.Status),
		OrganizationID:  ticket.OrganizationID,
		DepartmentID:    ticket.DepartmentID,
		CreatorID:       ticket.CreatorID,
		AssigneeID:      ticket.AssigneeID,
		ApprovedByID:    ticket.ApprovedByID,
		ApprovedAt:      ticket.ApprovedAt,
		RejectionReason: ticket.RejectionReason,
		DueDate:         ticket.DueDate,
		ResponseDueDate: ticket.ResponseDueDate,
		Overdue:         sla.IsOverdue(ticket.DueDate, ticket.Status, now),
		Solution:        ticket.Solution,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
	if ticket.SLAResponseHrs != nil && ticket.SLAResolveHrs != nil {
		resp.SLABudgets = &SLABudgets{
			ResponseHours:     *ticket.SLAResponseHrs,
			ResponseDisplay:   sla.FormatHours(*ticket.SLAResponseHrs),
			ResolutionHours:   *ticket.SLAResolveHrs,
			ResolutionDisplay: sla.FormatHours(*ticket.SLAResolveHrs),
		}
	}
	return resp
}

// FromTickets maps a ticket slice.
func FromTickets(tickets []domain.Ticket, now time.Time) []TicketResponse {
	result := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		result = append(result, FromTicket(&tickets[i], now))
	}
	return result
}

// CommentSegment mirrors mention.Segment on the wire.
type CommentSegment struct {
	Text    string `json:"text"`
	Mention bool   `json:"mention"`
}

// CommentResponse renders a thread entry with its mention segments.
type CommentResponse struct {
	ID         string           `json:"id"`
	TicketID   string           `json:"ticket_id"`
	AuthorID   string           `json:"author_id"`
	AuthorName string           `json:"author_name,omitempty"`
	Content    string           `json:"content"`
	MentionIDs []string         `json:"mention_ids"`
	Segments   []CommentSegment `json:"segments"`
	CreatedAt  time.Time        `json:"created_at"`
}

// FromCommentView maps a service comment view.
func FromCommentView(view *service.CommentView) CommentResponse {
	resp := CommentResponse{
		ID:         view.Comment.ID,
		TicketID:   view.Comment.TicketID,
		AuthorID:   view.Comment.AuthorID,
		Content:    view.Comment.Content,
		MentionIDs: view.Comment.Mentions,
		Segments:   fromSegments(view.Segments),
		CreatedAt:  view.Comment.CreatedAt,
	}
	if resp.MentionIDs == nil {
		resp.MentionIDs = []string{}
	}
	if view.Author != nil {
		resp.AuthorName = view.Author.Name
	}
	return resp
}

// FromCommentViews maps a thread.
func FromCommentViews(views []service.CommentView) []CommentResponse {
	result := make([]CommentResponse, 0, len(views))
	for i := range views {
		result = append(result, FromCommentView(&views[i]))
	}
	return result
}

func fromSegments(segments []mention.Segment) []CommentSegment {
	result := make([]CommentSegment, 0, len(segments))
	for _, segment := range segments {
		result = append(result, CommentSegment{Text: segment.Text, Mention: segment.Mention})
	}
	return result
}

// UserResponse is the wire shape of a directory user. The password hash
// never leaves the service.
type UserResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Role           string  `json:"role"`
	OrganizationID string  `json:"organization_id"`
	DepartmentID   *string `json:"department_id,omitempty"`
}

// FromUser maps a domain user.
func FromUser(user *domain.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           string(user.Role),
		OrganizationID: user.OrganizationID,
		DepartmentID:   user.DepartmentID,
	}
}

// FromUsers maps a user slice.
func FromUsers(users []domain.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for i := range users {
		result = append(result, FromUser(&users[i]))
	}
	return result
}

// LoginResponse carries the issued token and the authenticated user.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// OrganizationResponse is the wire shape of a tenant organization.
type OrganizationResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// FromOrganization maps a domain organization.
func FromOrganization(org *domain.Organization) OrganizationResponse {
	return OrganizationResponse{ID: org.ID, Name: org.Name, Description: org.Description, IsActive: org.IsActive}
}

// FromOrganizations maps an organization slice.
func FromOrganizations(orgs []domain.Organization) []OrganizationResponse {
	result := make([]OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		result = append(result, FromOrganization(&orgs[i]))
	}
	return result
}

// DepartmentResponse is the wire shape of a department.
type DepartmentResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	OrganizationID string `json:"organization_id"`
	IsActive       bool   `json:"is_active"`
}

// FromDepartment maps a domain department.
func FromDepartment(dept *domain.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:             dept.ID,
		Name:           dept.Name,
		Description:    dept.Description,
		OrganizationID: dept.OrganizationID,
		IsActive:       dept.IsActive,
	}
}

// FromDepartments maps a department slice.
func FromDepartments(depts []domain.Department) []DepartmentResponse {
	result := make([]DepartmentResponse, 0, len(depts))
	for i := range depts {
		result = append(result, FromDepartment(&depts[i]))
	}
	return result
}

// CategoryResponse is the wire shape of a ticket category.
type CategoryResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	OrganizationID string `json:"organization_id"`
	IsActive       bool   `json:"is_active"`
}

// FromCategory maps a domain category.
func FromCategory(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:             category.ID,
		Name:           category.Name,
		Description:    category.Description,
		OrganizationID: category.OrganizationID,
		IsActive:       category.IsActive,
	}
}

// FromCategories maps a category slice.
func FromCategories(categories []domain.Category) []CategoryResponse {
	result := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		result = append(result, FromCategory(&categories[i]))
	}
	return result
}

// SLAPolicyResponse is the wire shape of a policy, with budgets in both
// encodings.
type SLAPolicyResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	OrganizationID    *string `json:"organization_id,omitempty"`
	Priority          string  `json:"priority"`
	ResponseHours     int     `json:"response_hours"`
	ResponseMinutes   int     `json:"response_minutes"`
	ResolutionHours   int     `json:"resolution_hours"`
	ResolutionMinutes int     `json:"resolution_minutes"`
	ResponseTotal     float64 `json:"response_total_hours"`
	ResolutionTotal   float64 `json:"resolution_total_hours"`
	IsActive          bool    `json:"is_active"`
	Description       string  `json:"description,omitempty"`
}

// FromPolicy maps a domain policy, splitting the stored fractional hours
// into the (hours, minutes) pairs forms edit.
func FromPolicy(policy *domain.SLAPolicy) SLAPolicyResponse {
	response := sla.ToParts(policy.ResponseHours)
	resolution := sla.ToParts(policy.ResolutionHours)
	return SLAPolicyResponse{
		ID:                policy.ID,
		Name:              policy.Name,
		OrganizationID:    policy.OrganizationID,
		Priority:          string(policy.Priority),
		ResponseHours:     response.Hours,
		ResponseMinutes:   response.Minutes,
		ResolutionHours:   resolution.Hours,
		ResolutionMinutes: resolution.Minutes,
		ResponseTotal:     policy.ResponseHours,
		ResolutionTotal:   policy.ResolutionHours,
		IsActive:          policy.IsActive,
		Description:       policy.Description,
	}
}

// FromPolicies maps a policy slice.
func FromPolicies(policies []domain.SLAPolicy) []SLAPolicyResponse {
	result := make([]SLAPolicyResponse, 0, len(policies))
	for i := range policies {
		result = append(result, FromPolicy(&policies[i]))
	}
	return result
}
