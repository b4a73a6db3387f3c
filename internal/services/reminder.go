package services

import (
	"fmt"
	"time"

	"github.com/freelancehub/pmcopilot/backend/internal/config"
	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"github.com/freelancehub/pmcopilot/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ReminderService runs the daily payment reminder sweep. It finds overdue
// and soon-due payment entries, picks a tone from how late each one is and
// sends the matching reminder email. Reminders only go out on business
// days in the configured country.
type ReminderService struct {
	db            *gorm.DB
	cfg           *config.RemindersConfig
	payments      *PaymentService
	email         *EmailService
	calendars     *CalendarService
	cronScheduler *cron.Cron
	entryID       cron.EntryID
}

func NewReminderService(db *gorm.DB, cfg *config.RemindersConfig) *ReminderService {
	return &ReminderService{
		db:        db,
		cfg:       cfg,
		payments:  NewPaymentService(db),
		email:     NewEmailService(db),
		calendars: NewCalendarService(),
	}
}

func (s *ReminderService) StartScheduler() {
	if !s.cfg.Enabled {
		logger.Infof("[Reminder] Scheduler disabled")
		return
	}

	s.cronScheduler = cron.New()

	schedule := s.cfg.Schedule
	if schedule == "" {
		schedule = "0 9 * * *"
	}

	entryID, err := s.cronScheduler.AddFunc(schedule, func() {
		if _, err := s.RunSweep(time.Now()); err != nil {
			logger.Errorf("[Reminder] Sweep failed: %v", err)
		}
	})
	if err != nil {
		logger.Errorf("[Reminder] Failed to add cron job: %v", err)
		return
	}

	s.entryID = entryID
	s.cronScheduler.Start()
	logger.Infof("[Reminder] Scheduler started (cron: %s)", schedule)
}

func (s *ReminderService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// ToneForDaysOverdue maps lateness to a reminder tone: not yet due is
// gentle, up to a week late is neutral, beyond that firm.
func ToneForDaysOverdue(days int) string {
	switch {
	case days <= 0:
		return ToneGentle
	case days <= 7:
		return ToneNeutral
	default:
		return ToneFirm
	}
}

// RunSweep sends reminders for all overdue and soon-due payments as of now.
// It returns how many reminders were sent. A non-business day skips the
// whole sweep.
func (s *ReminderService) RunSweep(now time.Time) (int, error) {
	country := s.reminderCountry()
	if !s.calendars.IsBusinessDay(now, country) {
		logger.Infof("[Reminder] %s is not a business day in %s, skipping sweep",
			now.Format("2006-01-02"), country)
		return 0, nil
	}

	dueSoonDays := s.cfg.DueSoonDays
	if dueSoonDays <= 0 {
		dueSoonDays = 3
	}

	views, err := s.payments.OverdueAndDueSoon(now, dueSoonDays)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range views {
		if err := s.sendReminder(&views[i]); err != nil {
			logger.Errorf("[Reminder] Could not send reminder for contract %d entry %s: %v",
				views[i].ContractID, views[i].Entry.ID, err)
			continue
		}
		sent++
	}

	logger.Infof("[Reminder] Sweep complete: %d reminders sent for %d candidates", sent, len(views))
	return sent, nil
}

// SendManualReminder sends a single reminder at an explicitly chosen tone,
// bypassing the business-day check.
func (s *ReminderService) SendManualReminder(view *PaymentView, tone string) (*models.Communication, error) {
	template := ReminderTemplate(tone)
	return s.deliver(view, template)
}

func (s *ReminderService) sendReminder(view *PaymentView) error {
	template := ReminderTemplate(ToneForDaysOverdue(view.DaysOverdue))
	_, err := s.deliver(view, template)
	return err
}

func (s *ReminderService) deliver(view *PaymentView, template *EmailTemplate) (*models.Communication, error) {
	if view.ClientEmail == "" {
		return nil, fmt.Errorf("%w: contract %d has no client email", ErrValidation, view.ContractID)
	}

	var user models.User
	if err := s.db.First(&user, view.UserID).Error; err != nil {
		return nil, fmt.Errorf("%w: load user %d: %v", ErrStoreUnavailable, view.UserID, err)
	}

	subject, body := template.Render(map[string]string{
		"clientName":     view.ClientName,
		"amount":         fmt.Sprintf("%.2f", view.Entry.Amount),
		"currency":       view.Entry.Currency,
		"dueDate":        view.Entry.DueDate,
		"milestone":      view.MilestoneTitle,
		"freelancerName": user.Name,
	})

	contractID := view.ContractID
	return s.email.Send(&OutgoingEmail{
		UserID:     view.UserID,
		ContractID: &contractID,
		Type:       models.CommTypePaymentReminder,
		To:         view.ClientEmail,
		Subject:    subject,
		Body:       body,
	})
}

func (s *ReminderService) reminderCountry() string {
	var cfg models.SystemConfig
	if err := s.db.Where("`key` = ?", "reminder_country").First(&cfg).Error; err != nil {
		return "US"
	}
	return cfg.Value
}
