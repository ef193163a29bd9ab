package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSpec fires every day at 21:00 UTC.
const DefaultSpec = "0 21 * * *"

// Scheduler runs the periodic KPI report.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	ctx        context.Context
	cancel     context.CancelFunc
	reportFunc func(ctx context.Context) error
	logger     *zap.Logger
}

// New creates a scheduler for a standard five-field cron spec evaluated in UTC.
func New(spec string, logger *zap.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		spec:   spec,
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// SetReportFunction sets the job run on every tick.
func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.reportFunc = f
}

// Start registers the report job and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.reportFunc == nil {
		s.logger.Warn("⚠️ Report function not set, scheduler will not generate reports")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		s.logger.Info("🕘 Triggered scheduled report", zap.String("spec", s.spec))
		if err := s.RunNow(); err != nil {
			s.logger.Error("❌ Scheduled report failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("📅 Scheduler started", zap.String("spec", s.spec), zap.Time("next", s.Next()))
	return nil
}

// RunNow runs the report job synchronously.
func (s *Scheduler) RunNow() error {
	if s.reportFunc == nil {
		return nil
	}
	return s.reportFunc(s.ctx)
}

// Next returns the next activation time, zero when nothing is scheduled.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop waits for a running job and cancels the job context.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("📅 Scheduler stopped")
}

// IsRunning reports whether a job is registered.
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
