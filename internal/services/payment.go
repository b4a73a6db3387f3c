package services

import (
	"fmt"
	"time"

	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"gorm.io/gorm"
)

// Payment statuses are derived, never stored: paid if PaidAt is set, overdue
// if past due, pending otherwise.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusOverdue = "overdue"
)

const dueDateLayout = "2006-01-02"

// DeriveStatus computes the status of a payment entry at the given clock.
// Overdue is a whole-day comparison: an entry stays pending for all of its
// due day, no matter the time of day the clock reads. Unparseable due dates
// are reported as pending rather than overdue.
func DeriveStatus(entry *models.PaymentPlanEntry, now time.Time) string {
	if entry.PaidAt != nil {
		return PaymentStatusPaid
	}
	if _, err := time.Parse(dueDateLayout, entry.DueDate); err != nil {
		return PaymentStatusPending
	}
	// YYYY-MM-DD strings compare correctly lexicographically.
	if entry.DueDate < now.Format(dueDateLayout) {
		return PaymentStatusOverdue
	}
	return PaymentStatusPending
}

// MarkPaid sets the payment timestamp. Marking an already-paid entry with the
// same timestamp is a no-op; a different timestamp overwrites as a correction.
// Once paid, DeriveStatus reports paid regardless of the clock.
func MarkPaid(entry *models.PaymentPlanEntry, paidAt time.Time) *models.PaymentPlanEntry {
	if entry.PaidAt != nil && entry.PaidAt.Equal(paidAt) {
		return entry
	}
	t := paidAt
	entry.PaidAt = &t
	return entry
}

// DaysOverdue returns whole calendar days elapsed since the due date, or 0
// when the entry is not overdue. Monotonically non-decreasing in now for a
// fixed overdue entry and constant across any single day.
func DaysOverdue(entry *models.PaymentPlanEntry, now time.Time) int {
	if DeriveStatus(entry, now) != PaymentStatusOverdue {
		return 0
	}
	due, err := time.Parse(dueDateLayout, entry.DueDate)
	if err != nil {
		return 0
	}
	today, err := time.Parse(dueDateLayout, now.Format(dueDateLayout))
	if err != nil {
		return 0
	}
	return int(today.Sub(due).Hours() / 24)
}

// PaymentService works over the payment plans embedded in contract analyses.
type PaymentService struct {
	db *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db}
}

// PaymentView flattens a plan entry with its contract context and derived
// status for listing and reminders.
type PaymentView struct {
	ContractID     uint                    `json:"contract_id"`
	UserID         uint                    `json:"user_id"`
	ContractTitle  string                  `json:"contract_title"`
	ClientName     string                  `json:"client_name"`
	ClientEmail    string                  `json:"client_email"`
	MilestoneTitle string                  `json:"milestone_title"`
	Entry          models.PaymentPlanEntry `json:"entry"`
	Status         string                  `json:"status"`
	DaysOverdue    int                     `json:"days_overdue"`
}

// ListByUser returns every payment entry across the user's analyzed contracts
// with statuses derived at the given clock, ordered by due date.
func (s *PaymentService) ListByUser(userID uint, now time.Time) ([]PaymentView, error) {
	var contracts []models.Contract
	err := s.db.
		Where("user_id = ? AND analysis IS NOT NULL", userID).
		Order("created_at DESC").
		Find(&contracts).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	views := make([]PaymentView, 0)
	for i := range contracts {
		views = append(views, s.contractPayments(&contracts[i], now)...)
	}
	return views, nil
}

func (s *PaymentService) contractPayments(contract *models.Contract, now time.Time) []PaymentView {
	if contract.Analysis == nil {
		return nil
	}

	milestones := make(map[string]string, len(contract.Analysis.Milestones))
	for _, m := range contract.Analysis.Milestones {
		milestones[m.ID] = m.Title
	}

	views := make([]PaymentView, 0, len(contract.Analysis.PaymentPlan))
	for _, entry := range contract.Analysis.PaymentPlan {
		views = append(views, PaymentView{
			ContractID:     contract.ID,
			UserID:         contract.UserID,
			ContractTitle:  contract.Title,
			ClientName:     contract.ClientName,
			ClientEmail:    contract.ClientEmail,
			MilestoneTitle: milestones[entry.MilestoneID],
			Entry:          entry,
			Status:         DeriveStatus(&entry, now),
			DaysOverdue:    DaysOverdue(&entry, now),
		})
	}
	return views
}

// MarkEntryPaid records a payment against a plan entry of one of userID's
// contracts. The whole analysis document is replaced in one write
// (single-row atomicity).
func (s *PaymentService) MarkEntryPaid(contractID, userID uint, entryID string, paidAt time.Time) error {
	var contract models.Contract
	if err := s.db.Where("id = ? AND user_id = ?", contractID, userID).First(&contract).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: contract %d", ErrNotFound, contractID)
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if contract.Analysis == nil {
		return fmt.Errorf("%w: contract %d has no payment plan", ErrNotFound, contractID)
	}

	found := false
	for i := range contract.Analysis.PaymentPlan {
		if contract.Analysis.PaymentPlan[i].ID == entryID {
			MarkPaid(&contract.Analysis.PaymentPlan[i], paidAt)
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: payment entry %s", ErrNotFound, entryID)
	}

	err := s.db.Model(&models.Contract{}).
		Where("id = ?", contractID).
		Update("analysis", contract.Analysis).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// OverdueAndDueSoon returns unpaid entries that are overdue or due within
// dueSoonDays, across all users. Used by the reminder scheduler.
func (s *PaymentService) OverdueAndDueSoon(now time.Time, dueSoonDays int) ([]PaymentView, error) {
	var contracts []models.Contract
	err := s.db.
		Where("analysis IS NOT NULL AND status IN ?",
			[]string{models.ContractStatusAnalyzed, models.ContractStatusActive}).
		Find(&contracts).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	horizon := now.AddDate(0, 0, dueSoonDays)
	var due []PaymentView
	for i := range contracts {
		for _, v := range s.contractPayments(&contracts[i], now) {
			if v.Status == PaymentStatusPaid {
				continue
			}
			dueDate, err := time.Parse(dueDateLayout, v.Entry.DueDate)
			if err != nil {
				continue
			}
			if v.Status == PaymentStatusOverdue || !dueDate.After(horizon) {
				due = append(due, v)
			}
		}
	}
	return due, nil
}
