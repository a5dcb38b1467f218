package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/dashboard"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// DashboardWorker keeps the organization-wide dashboard caches warm by
// running one poller per organization on the refresh cadence, so the
// first dashboard request after a quiet period is served from cache.
type DashboardWorker struct {
	orgs    repository.OrganizationRepository
	stats   *service.StatsService
	cfg     config.DashboardConfig
	logger  *zap.Logger
	handles []*dashboard.Handle
}

// NewDashboardWorker builds the worker.
func NewDashboardWorker(orgs repository.OrganizationRepository, stats *service.StatsService, cfg config.DashboardConfig, logger *zap.Logger) *DashboardWorker {
	return &DashboardWorker{orgs: orgs, stats: stats, cfg: cfg, logger: logger}
}

// Start launches a poller per active organization. Organizations added
// after boot are picked up on restart.
func (w *DashboardWorker) Start(ctx context.Context) error {
	orgs, err := w.orgs.List(ctx)
	if err != nil {
		return err
	}
	for _, org := range orgs {
		if !org.IsActive {
			continue
		}
		poller := dashboard.NewPoller(
			w.stats.SnapshotSource(org.ID),
			w.cfg.RefreshInterval(),
			w.logger.With(zap.String("organization_id", org.ID)),
		)
		w.handles = append(w.handles, poller.Start(ctx))
	}
	w.logger.Info("dashboard pollers started", zap.Int("count", len(w.handles)))
	return nil
}

// Stop tears every poller down and waits for in-flight refreshes.
func (w *DashboardWorker) Stop() {
	for _, handle := range w.handles {
		handle.Stop()
	}
	w.handles = nil
}
