package service

import (
	"context"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/sla"
)

func ptr(s string) *string { return &s }

func addUser(env *testEnv, id, name string, role domain.UserRole, dept *string) *domain.User {
	user := domain.User{
		ID:             id,
		Name:           name,
		Email:          id + "@example.com",
		Role:           role,
		OrganizationID: "org-1",
		DepartmentID:   dept,
		IsActive:       true,
	}
	env.users.users = append(env.users.users, user)
	return &user
}

func TestCreateAssignsNumberAndSLADeadlines(t *testing.T) {
	env := newTestEnv()
	creator := addUser(env, "u1", "Pat", domain.RoleUser, nil)
	env.policies.policies = append(env.policies.policies, domain.SLAPolicy{
		ID:              "p-1",
		Priority:        domain.TicketPriorityHigh,
		OrganizationID:  ptr("org-1"),
		ResponseHours:   0.5,
		ResolutionHours: 8,
		IsActive:        true,
	})

	ticket, err := env.service.Create(context.Background(), creator, CreateTicketInput{
		Title:       "VPN down",
		Description: "cannot connect",
		Priority:    domain.TicketPriorityHigh,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ticket.TicketID != 1000 {
		t.Errorf("first ticket number = %d", ticket.TicketID)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Errorf("status = %q", ticket.Status)
	}
	wantResponse := sla.Deadline(env.now, 0.5)
	if ticket.ResponseDueDate == nil || !ticket.ResponseDueDate.Equal(wantResponse) {
		t.Errorf("response due = %v, want %v", ticket.ResponseDueDate, wantResponse)
	}
	wantResolve := sla.Deadline(env.now, 8)
	if ticket.DueDate == nil || !ticket.DueDate.Equal(wantResolve) {
		t.Errorf("due = %v, want %v", ticket.DueDate, wantResolve)
	}

	second, err := env.service.Create(context.Background(), creator, CreateTicketInput{
		Title: "printer", Description: "jam",
	})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if second.TicketID != 1001 {
		t.Errorf("second ticket number = %d", second.TicketID)
	}
	if second.Priority != domain.TicketPriorityMedium {
		t.Errorf("default priority = %q", second.Priority)
	}
}

func TestCreateFallsBackToDefaultBudgets(t *testing.T) {
	env := newTestEnv()
	creator := addUser(env, "u1", "Pat", domain.RoleUser, nil)

	ticket, err := env.service.Create(context.Background(), creator, CreateTicketInput{
		Title: "x", Description: "y", Priority: domain.TicketPriorityLow,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ticket.SLAResponseHrs == nil || *ticket.SLAResponseHrs != 4 {
		t.Errorf("response budget = %v", ticket.SLAResponseHrs)
	}
	if ticket.SLAResolveHrs == nil || *ticket.SLAResolveHrs != 24 {
		t.Errorf("resolution budget = %v", ticket.SLAResolveHrs)
	}
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv()
	creator := addUser(env, "u1", "Pat", domain.RoleUser, nil)

	if _, err := env.service.Create(context.Background(), creator, CreateTicketInput{Description: "y"}); err == nil {
		t.Error("empty title accepted")
	}
	if _, err := env.service.Create(context.Background(), creator, CreateTicketInput{Title: "x"}); err == nil {
		t.Error("empty description accepted")
	}
	if _, err := env.service.Create(context.Background(), creator, CreateTicketInput{
		Title: "x", Description: "y", Priority: domain.TicketPriority("severe"),
	}); err == nil {
		t.Error("unknown priority accepted")
	}
}

func TestListScopesByRole(t *testing.T) {
	env := newTestEnv()
	creator := addUser(env, "u1", "Pat", domain.RoleUser, nil)
	other := addUser(env, "u2", "Sam", domain.RoleUser, nil)
	agent := addUser(env, "u3", "Ada", domain.RoleAgent, nil)

	for _, user := range []*domain.User{creator, other} {
		if _, err := env.service.Create(context.Background(), user, CreateTicketInput{
			Title: "t", Description: "d",
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	own, err := env.service.List(context.Background(), creator, ListTicketsInput{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(own) != 1 || own[0].CreatorID != creator.ID {
		t.Errorf("user sees %d tickets", len(own))
	}

	all, err := env.service.List(context.Background(), agent, ListTicketsInput{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("agent sees %d tickets", len(all))
	}
}

func TestUpdateStatusThroughAuthority(t *testing.T) {
	env := newTestEnv()
	creator := addUser(env, "u1", "Pat", domain.RoleUser, nil)
	agent := addUser(env, "u3", "Ada", domain.RoleAgent, nil)

	ticket, err := env.service.Create(context.Background(), creator, CreateTicketInput{
		Title: "t", Description: "d",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	status := domain.TicketStatusInProgress
	updated, err := env.service.Update(context.Background(), agent, ticket.TicketID, UpdateTicketInput{Status: &status})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != domain.TicketStatusInProgress {
		t.Errorf("status = %q", updated.Status)
	}

	// Plain users cannot move status, even on their own ticket.
	closed := domain.TicketStatusClosed
	if _, err := env.service.Update(context.Background(), creator, ticket.TicketID, UpdateTicketInput{Status: &closed}); err == nil {
		t.Error("user changed status directly")
	}
}

func TestApproveRejectFlow(t *testing.T) {
	env := newTestEnv()
	creator := addUser(env, "u1", "Pat", domain.RoleUser, ptr("dept-1"))
	agent := addUser(env, "u3", "Ada", domain.RoleAgent, nil)
	head := addUser(env, "u4", "Max", domain.RoleDepartmentHead, ptr("dept-1"))
	otherHead := addUser(env, "u5", "Kim", domain.RoleDepartmentHead, ptr("dept-2"))
	env.depts.departments = append(env.depts.departments, domain.Department{ID: "dept-1", OrganizationID: "org-1"})

	ticket, err := env.service.Create(context.Background(), creator, CreateTicketInput{
		Title: "t", Description: "d", DepartmentID: ptr("dept-1"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	pending := domain.TicketStatusApprovalPending
	if _, err := env.service.Update(context.Background(), agent, ticket.TicketID, UpdateTicketInput{Status: &pending}); err != nil {
		t.Fatalf("to approval-pending: %v", err)
	}

	if _, err := env.service.Approve(context.Background(), otherHead, ticket.TicketID); err == nil {
		t.Error("cross-department approval accepted")
	}

	queue, err := env.service.ApprovalQueue(context.Background(), head)
	if err != nil {
		t.Fatalf("ApprovalQueue: %v", err)
	}
	if len(queue) != 1 {
		t.Fatalf("queue = %d tickets", len(queue))
	}

	approved, err := env.service.Approve(context.Background(), head, ticket.TicketID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != domain.TicketStatusApproved {
		t.Errorf("status = %q", approved.Status)
	}
	if approved.ApprovedByID == nil || *approved.ApprovedByID != head.ID {
		t.Error("approver not recorded")
	}

	// A decided ticket cannot be decided again.
	if _, err := env.service.Reject(context.Background(), head, ticket.TicketID, "nope"); err == nil {
		t.Error("rejected a non-pending ticket")
	}
}

func TestApprovalQueueEmptyForHeadWithoutDepartment(t *testing.T) {
	env := newTestEnv()
	head := addUser(env, "u4", "Max", domain.RoleDepartmentHead, nil)
	queue, err := env.service.ApprovalQueue(context.Background(), head)
	if err != nil {
		t.Fatalf("ApprovalQueue: %v", err)
	}
	if len(queue) != 0 {
		t.Errorf("queue = %d tickets", len(queue))
	}
}

func TestAddCommentResolvesMentions(t *testing.T) {
	env := newTestEnv()
	creator := addUser(env, "u1", "Pat Lee", domain.RoleUser, nil)
	addUser(env, "u2", "Jane Doe", domain.RoleAgent, nil)

	ticket, err := env.service.Create(context.Background(), creator, CreateTicketInput{
		Title: "t", Description: "d",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	view, err := env.service.AddComment(context.Background(), creator, ticket.TicketID, "ping @Jane Doe please")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if len(view.Comment.Mentions) != 1 || view.Comment.Mentions[0] != "u2" {
		t.Errorf("mentions = %v", view.Comment.Mentions)
	}
	if len(view.Segments) != 3 || !view.Segments[1].Mention || view.Segments[1].Text != "@Jane Doe" {
		t.Errorf("segments = %v", view.Segments)
	}

	if _, err := env.service.AddComment(context.Background(), creator, ticket.TicketID, "   "); err == nil {
		t.Error("blank comment accepted")
	}
}

func TestCommentThreadRendersStoredMentions(t *testing.T) {
	env := newTestEnv()
	creator := addUser(env, "u1", "Pat Lee", domain.RoleUser, nil)
	addUser(env, "u2", "Jane Doe", domain.RoleAgent, nil)

	ticket, err := env.service.Create(context.Background(), creator, CreateTicketInput{
		Title: "t", Description: "d",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := env.service.AddComment(context.Background(), creator, ticket.TicketID, "cc @Jane Doe and @nobody"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	thread, err := env.service.CommentThread(context.Background(), creator, ticket.TicketID)
	if err != nil {
		t.Fatalf("CommentThread: %v", err)
	}
	if len(thread) != 1 {
		t.Fatalf("thread = %d comments", len(thread))
	}
	view := thread[0]
	if view.Author == nil || view.Author.ID != creator.ID {
		t.Error("author not resolved")
	}
	mentionSegments := 0
	for _, segment := range view.Segments {
		if segment.Mention {
			mentionSegments++
			if segment.Text != "@Jane Doe" {
				t.Errorf("mention segment = %q", segment.Text)
			}
		}
	}
	if mentionSegments != 1 {
		t.Errorf("mention segments = %d", mentionSegments)
	}
}

func TestGetByNumberAccessControl(t *testing.T) {
	env := newTestEnv()
	creator := addUser(env, "u1", "Pat", domain.RoleUser, nil)
	stranger := addUser(env, "u2", "Sam", domain.RoleUser, nil)

	ticket, err := env.service.Create(context.Background(), creator, CreateTicketInput{
		Title: "t", Description: "d",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := env.service.GetByNumber(context.Background(), stranger, ticket.TicketID); err == nil {
		t.Error("stranger read another user's ticket")
	}
	if _, err := env.service.GetByNumber(context.Background(), creator, ticket.TicketID); err != nil {
		t.Errorf("creator denied: %v", err)
	}
	if _, err := env.service.GetByNumber(context.Background(), creator, 9999); err == nil {
		t.Error("missing ticket did not error")
	}
}
