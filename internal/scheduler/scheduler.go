package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
)

// reminderWindow is how far ahead the daily job looks for due events.
const reminderWindow = 3 * 24 * time.Hour

// InvitationSweeper expires stale pending invitations.
type InvitationSweeper interface {
	ExpirePending() (int64, error)
}

// DueEventSource reports how many events come due per farm in a window.
type DueEventSource interface {
	CountDueByFarm(from, to time.Time) (map[int64]int64, error)
}

// FarmDirectory resolves farm names and active owner emails.
type FarmDirectory interface {
	GetFarmByID(farmID int64) (*models.Farm, error)
	GetActiveOwnerEmails(farmID int64) ([]string, error)
}

// ReminderMailer delivers due-event reminder mail.
type ReminderMailer interface {
	IsEnabled() bool
	SendDueEventsEmail(ctx context.Context, toEmail, farmName string, dueCount int64) error
}

// Scheduler manages the background jobs.
type Scheduler struct {
	cron             *cron.Cron
	invitations      InvitationSweeper
	events           DueEventSource
	farms            FarmDirectory
	mailer           ReminderMailer
	reminderSchedule string
	logger           *zap.Logger
}

// NewScheduler creates a new scheduler instance. reminderSchedule is the
// cron expression for the daily due-event reminder job.
func NewScheduler(invitations InvitationSweeper, events DueEventSource, farms FarmDirectory, mailer ReminderMailer, reminderSchedule string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reminderSchedule == "" {
		reminderSchedule = "0 7 * * *"
	}

	return &Scheduler{
		cron:             cron.New(),
		invitations:      invitations,
		events:           events,
		farms:            farms,
		mailer:           mailer,
		reminderSchedule: reminderSchedule,
		logger:           logger,
	}
}

// Start registers the jobs and starts the cron loop: an hourly
// invitation expiry sweep and the due-event reminder on its configured
// schedule.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc("0 * * * *", s.expireInvitations); err != nil {
		s.logger.Error("failed to schedule invitation sweep", zap.Error(err))
	}
	if _, err := s.cron.AddFunc(s.reminderSchedule, s.sendDueReminders); err != nil {
		s.logger.Error("failed to schedule due-event reminders", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) expireInvitations() {
	n, err := s.invitations.ExpirePending()
	if err != nil {
		s.logger.Error("invitation expiry sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("expired stale invitations", zap.Int64("count", n))
	}
}

func (s *Scheduler) sendDueReminders() {
	if !s.mailer.IsEnabled() {
		s.logger.Debug("skipping due-event reminders, email disabled")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	now := time.Now()
	counts, err := s.events.CountDueByFarm(now, now.Add(reminderWindow))
	if err != nil {
		s.logger.Error("failed to count due events", zap.Error(err))
		return
	}

	for farmID, dueCount := range counts {
		farm, err := s.farms.GetFarmByID(farmID)
		if err != nil || farm == nil {
			s.logger.Error("failed to resolve farm for reminder",
				zap.Int64("farm_id", farmID),
				zap.Error(err))
			continue
		}

		emails, err := s.farms.GetActiveOwnerEmails(farmID)
		if err != nil {
			s.logger.Error("failed to resolve owner emails",
				zap.Int64("farm_id", farmID),
				zap.Error(err))
			continue
		}

		for _, email := range emails {
			if err := s.mailer.SendDueEventsEmail(ctx, email, farm.Name, dueCount); err != nil {
				s.logger.Error("reminder email failed",
					zap.Int64("farm_id", farmID),
					zap.String("email", email),
					zap.Error(err))
			}
		}
	}

	if len(counts) > 0 {
		s.logger.Info("due-event reminders sent", zap.Int("farms", len(counts)))
	}
}
