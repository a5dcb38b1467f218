package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// NotificationWorker drains the notification queue in the background.
// Delivery is a stub that logs what would be sent; the transport config
// decides between email and webhook shapes.
type NotificationWorker struct {
	queue  <-chan service.Notification
	cfg    config.NotificationConfig
	logger *zap.Logger
}

// NewNotificationWorker builds the worker.
func NewNotificationWorker(queue <-chan service.Notification, cfg config.NotificationConfig, logger *zap.Logger) *NotificationWorker {
	return &NotificationWorker{queue: queue, cfg: cfg, logger: logger}
}

// Run consumes until the context is cancelled.
func (w *NotificationWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notification worker stopped")
			return
		case n := <-w.queue:
			w.deliver(n)
		}
	}
}

func (w *NotificationWorker) deliver(n service.Notification) {
	transport := "email"
	if w.cfg.WebhookURL != "" {
		transport = "webhook"
	}
	w.logger.Info("notification delivered",
		zap.String("transport", transport),
		zap.String("recipient", n.RecipientID),
		zap.String("subject", n.Subject))
}
