// Package scheduler runs the daily loan jobs on cron specs.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/segyhp/carloan-engine/internal/config"
	"github.com/segyhp/carloan-engine/internal/domain"
	"github.com/segyhp/carloan-engine/pkg/utils"
)

// Jobs is the slice of the loan service the scheduler drives.
type Jobs interface {
	SettleLoans(ctx context.Context, asOf time.Time) (int, error)
	DueReminders(ctx context.Context, asOf time.Time) ([]domain.Reminder, error)
}

type Scheduler struct {
	cron     *cron.Cron
	jobs     Jobs
	cfg      config.SchedulerConfig
	location *time.Location
	logger   *zap.Logger
	baseCtx  context.Context
	now      func() time.Time
}

func New(baseCtx context.Context, jobs Jobs, cfg *config.Config, logger *zap.Logger) *Scheduler {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	location := cfg.Location()
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds(), cron.WithLocation(location)),
		jobs:     jobs,
		cfg:      cfg.Scheduler,
		location: location,
		logger:   logger,
		baseCtx:  baseCtx,
		now:      time.Now,
	}
}

// Register adds the settlement and reminder jobs.
func (s *Scheduler) Register() error {
	if _, err := s.cron.AddFunc(s.cfg.SettlementSpec, func() { s.RunSettlement(s.baseCtx) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.ReminderSpec, func() { s.RunReminders(s.baseCtx) }); err != nil {
		return err
	}

	s.logger.Info("cron jobs scheduled",
		zap.String("settlement_spec", s.cfg.SettlementSpec),
		zap.String("reminder_spec", s.cfg.ReminderSpec),
		zap.String("timezone", s.location.String()),
	)
	return nil
}

func (s *Scheduler) Start() {
	s.logger.Info("cron started")
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("cron stopped")
}

// today is the calendar date in the scheduler's timezone.
func (s *Scheduler) today() time.Time {
	return utils.DateOf(s.now().In(s.location))
}

// RunSettlement closes every active loan whose dues are fully paid.
func (s *Scheduler) RunSettlement(ctx context.Context) {
	asOf := s.today()
	s.logger.Info("running loan settlement", zap.Time("as_of", asOf))

	closed, err := s.jobs.SettleLoans(ctx, asOf)
	if err != nil {
		s.logger.Error("loan settlement finished with errors", zap.Int("closed", closed), zap.Error(err))
		return
	}

	s.logger.Info("loan settlement finished", zap.Int("closed", closed))
}

// RunReminders logs one notice per upcoming or overdue EMI and returns them.
func (s *Scheduler) RunReminders(ctx context.Context) []domain.Reminder {
	asOf := s.today()
	s.logger.Info("running EMI reminders", zap.Time("as_of", asOf))

	reminders, err := s.jobs.DueReminders(ctx, asOf)
	if err != nil {
		s.logger.Error("EMI reminders failed", zap.Error(err))
		return nil
	}

	for _, reminder := range reminders {
		s.logger.Info(reminder.Message,
			zap.String("loan_id", reminder.LoanID),
			zap.String("registration_no", reminder.RegistrationNo),
			zap.Time("due_date", reminder.DueDate),
			zap.String("amount", reminder.Amount.StringFixed(2)),
			zap.Bool("overdue", reminder.Overdue),
		)
	}

	s.logger.Info("EMI reminders sent", zap.Int("count", len(reminders)))
	return reminders
}
