package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// Notification is a queued message for a single recipient.
type Notification struct {
	RecipientID string
	Subject     string
	Body        string
}

// NotificationService translates ticket events into notifications and
// hands them to the worker queue. Delivery transport is a stub; only
// routing logic lives here.
type NotificationService struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
	queue  chan Notification
}

// NewNotificationService builds the service with a bounded queue.
func NewNotificationService(cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		cfg:    cfg,
		logger: logger,
		queue:  make(chan Notification, 256),
	}
}

// Queue exposes the outgoing channel for the delivery worker.
func (s *NotificationService) Queue() <-chan Notification {
	return s.queue
}

// Register wires the service onto the event dispatcher. Each ticket
// transition arrives as exactly one event, so the creator gets exactly
// one notification per change.
func (s *NotificationService) Register(dispatcher *events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, s.onCreated)
	dispatcher.Subscribe(events.EventTicketStatusChanged, s.onStatusChanged)
	dispatcher.Subscribe(events.EventTicketApproved, s.onDecision)
	dispatcher.Subscribe(events.EventTicketRejected, s.onDecision)
	dispatcher.Subscribe(events.EventTicketCommented, s.onCommented)
}

func (s *NotificationService) onCreated(payload any) {
	event, ok := payload.(events.TicketCreatedPayload)
	if !ok {
		return
	}
	s.enqueue(Notification{
		RecipientID: event.Ticket.CreatorID,
		Subject:     "Ticket received",
		Body:        fmt.Sprintf("Ticket #%d has been created: %s", event.Ticket.TicketID, event.Ticket.Title),
	})
}

func (s *NotificationService) onStatusChanged(payload any) {
	event, ok := payload.(events.StatusChangedPayload)
	if !ok {
		return
	}
	body := "Ticket status changed to " + string(event.To)
	if event.Reason != "" {
		body += ": " + event.Reason
	}
	s.enqueue(Notification{
		RecipientID: event.Ticket.CreatorID,
		Subject:     "Ticket update",
		Body:        body,
	})
}

func (s *NotificationService) onDecision(payload any) {
	event, ok := payload.(events.StatusChangedPayload)
	if !ok {
		return
	}
	subject := "Ticket approved"
	body := fmt.Sprintf("Ticket #%d was approved", event.Ticket.TicketID)
	if event.To == domain.TicketStatusRejected {
		subject = "Ticket rejected"
		body = fmt.Sprintf("Ticket #%d was rejected: %s", event.Ticket.TicketID, event.Reason)
	}
	s.enqueue(Notification{
		RecipientID: event.Ticket.CreatorID,
		Subject:     subject,
		Body:        body,
	})
}

func (s *NotificationService) onCommented(payload any) {
	event, ok := payload.(events.CommentedPayload)
	if !ok {
		return
	}
	for _, userID := range event.MentionedUserIDs {
		if userID == event.Actor.UserID {
			continue
		}
		s.enqueue(Notification{
			RecipientID: userID,
			Subject:     "You were mentioned",
			Body:        event.Comment.Content,
		})
	}
}

func (s *NotificationService) enqueue(n Notification) {
	select {
	case s.queue <- n:
	default:
		s.logger.Warn("notification queue full; dropping",
			zap.String("recipient", n.RecipientID))
	}
}
