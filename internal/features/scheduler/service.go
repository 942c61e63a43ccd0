package scheduler

import (
	"context"

	"go-wms/internal/config"
	"go-wms/internal/features/report"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Scheduler periodically sweeps due recurring reports. The sweep calls
// the same ExecuteScheduled entry point the HTTP trigger uses, so an
// external job runner can replace this in-process cron unchanged.
type Scheduler struct {
	cron    *cron.Cron
	reports report.ReportService
	logger  *zap.Logger
	spec    string
}

func NewScheduler(lc fx.Lifecycle, cfg *config.Config, reports report.ReportService, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		reports: reports,
		logger:  logger,
		spec:    cfg.CronSpec,
	}

	if _, err := s.cron.AddFunc(s.spec, s.sweep); err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.cron.Start()
			logger.Info("report scheduler started", zap.String("spec", s.spec))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopCtx := s.cron.Stop()
			select {
			case <-stopCtx.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})

	return s, nil
}

func (s *Scheduler) sweep() {
	result, err := s.reports.ExecuteScheduled(context.Background())
	if err != nil {
		s.logger.Error("scheduled report sweep failed", zap.Error(err))
		return
	}
	if result.SucceededCount > 0 || result.FailedCount > 0 {
		s.logger.Info("scheduled report sweep",
			zap.Strings("succeeded", result.Succeeded),
			zap.Strings("failed", result.Failed))
	}
}
