package service

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

func drainNotifications(queue <-chan Notification) []Notification {
	var result []Notification
	for {
		select {
		case n := <-queue:
			result = append(result, n)
		default:
			return result
		}
	}
}

func TestApprovalNotifiesCreatorOnce(t *testing.T) {
	env := newTestEnv()
	notifications := NewNotificationService(config.NotificationConfig{}, zap.NewNop())
	notifications.Register(env.dispatcher)

	creator := addUser(env, "u1", "Pat", domain.RoleUser, ptr("dept-1"))
	agent := addUser(env, "u2", "Ada", domain.RoleAgent, nil)
	head := addUser(env, "u3", "Max", domain.RoleDepartmentHead, ptr("dept-1"))
	env.depts.departments = append(env.depts.departments, domain.Department{ID: "dept-1", OrganizationID: "org-1"})

	ticket, err := env.service.Create(context.Background(), creator, CreateTicketInput{
		Title: "laptop", Description: "broken", DepartmentID: ptr("dept-1"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	created := drainNotifications(notifications.Queue())
	if len(created) != 1 || created[0].RecipientID != creator.ID {
		t.Fatalf("created notifications = %+v", created)
	}
	if created[0].Subject != "Ticket received" {
		t.Errorf("subject = %q", created[0].Subject)
	}

	pending := domain.TicketStatusApprovalPending
	if _, err := env.service.Update(context.Background(), agent, ticket.TicketID, UpdateTicketInput{Status: &pending}); err != nil {
		t.Fatalf("to approval-pending: %v", err)
	}
	if got := drainNotifications(notifications.Queue()); len(got) != 1 {
		t.Fatalf("status-change notifications = %d, want 1", len(got))
	}

	if _, err := env.service.Approve(context.Background(), head, ticket.TicketID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	decided := drainNotifications(notifications.Queue())
	if len(decided) != 1 {
		t.Fatalf("approval notifications = %d, want 1", len(decided))
	}
	if decided[0].RecipientID != creator.ID || decided[0].Subject != "Ticket approved" {
		t.Errorf("approval notification = %+v", decided[0])
	}
}

func TestRejectionNotificationCarriesReason(t *testing.T) {
	env := newTestEnv()
	notifications := NewNotificationService(config.NotificationConfig{}, zap.NewNop())
	notifications.Register(env.dispatcher)

	creator := addUser(env, "u1", "Pat", domain.RoleUser, ptr("dept-1"))
	agent := addUser(env, "u2", "Ada", domain.RoleAgent, nil)
	head := addUser(env, "u3", "Max", domain.RoleDepartmentHead, ptr("dept-1"))
	env.depts.departments = append(env.depts.departments, domain.Department{ID: "dept-1", OrganizationID: "org-1"})

	ticket, err := env.service.Create(context.Background(), creator, CreateTicketInput{
		Title: "license", Description: "renewal", DepartmentID: ptr("dept-1"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	pending := domain.TicketStatusApprovalPending
	if _, err := env.service.Update(context.Background(), agent, ticket.TicketID, UpdateTicketInput{Status: &pending}); err != nil {
		t.Fatalf("to approval-pending: %v", err)
	}
	drainNotifications(notifications.Queue())

	if _, err := env.service.Reject(context.Background(), head, ticket.TicketID, "no budget"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	got := drainNotifications(notifications.Queue())
	if len(got) != 1 {
		t.Fatalf("rejection notifications = %d, want 1", len(got))
	}
	if got[0].Subject != "Ticket rejected" {
		t.Errorf("subject = %q", got[0].Subject)
	}
	if want := "no budget"; !strings.Contains(got[0].Body, want) {
		t.Errorf("body %q missing reason %q", got[0].Body, want)
	}
}

func TestMentionFanOutSkipsAuthor(t *testing.T) {
	notifications := NewNotificationService(config.NotificationConfig{}, zap.NewNop())
	dispatcher := events.NewDispatcher(zap.NewNop())
	notifications.Register(dispatcher)

	dispatcher.Publish(events.EventTicketCommented, events.CommentedPayload{
		Ticket:           &domain.Ticket{TicketID: 1000, CreatorID: "u1"},
		Comment:          &domain.Comment{Content: "ping"},
		MentionedUserIDs: []string{"u1", "u2"},
		Actor:            events.Actor{UserID: "u1"},
	})
	got := drainNotifications(notifications.Queue())
	if len(got) != 1 || got[0].RecipientID != "u2" {
		t.Errorf("mention notifications = %+v", got)
	}
}
