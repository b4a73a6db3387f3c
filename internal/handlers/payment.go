package handlers

import (
	"strconv"
	"time"

	"github.com/freelancehub/pmcopilot/backend/internal/config"
	"github.com/freelancehub/pmcopilot/backend/internal/middleware"
	"github.com/freelancehub/pmcopilot/backend/internal/services"
	"github.com/freelancehub/pmcopilot/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	paymentService  *services.PaymentService
	reminderService *services.ReminderService
}

func NewPaymentHandler(db *gorm.DB, remindersCfg *config.RemindersConfig) *PaymentHandler {
	return &PaymentHandler{
		paymentService:  services.NewPaymentService(db),
		reminderService: services.NewReminderService(db, remindersCfg),
	}
}

// List returns all payment entries across the caller's contracts with
// derived statuses
// GET /api/payments
func (h *PaymentHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	views, err := h.paymentService.ListByUser(userID, time.Now())
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, views)
}

type markPaidRequest struct {
	PaidAt *time.Time `json:"paid_at"`
}

// MarkPaid records payment receipt for one entry
// POST /api/contracts/:id/payments/:entryId/paid
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	contractID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid contract id")
		return
	}
	entryID := c.Param("entryId")
	if entryID == "" {
		response.BadRequest(c, "invalid payment entry id")
		return
	}

	var req markPaidRequest
	// Empty body means paid now.
	_ = c.ShouldBindJSON(&req)
	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	if err := h.paymentService.MarkEntryPaid(uint(contractID), middleware.GetUserID(c), entryID, paidAt); err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "payment recorded"})
}

type sendReminderRequest struct {
	ContractID uint   `json:"contract_id" binding:"required"`
	EntryID    string `json:"entry_id" binding:"required"`
	Tone       string `json:"tone"` // gentle, neutral, firm; empty picks by lateness
}

// SendReminder sends a single payment reminder at a chosen tone
// POST /api/payments/reminders
func (h *PaymentHandler) SendReminder(c *gin.Context) {
	var req sendReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	now := time.Now()

	views, err := h.paymentService.ListByUser(userID, now)
	if err != nil {
		serviceError(c, err)
		return
	}

	var target *services.PaymentView
	for i := range views {
		if views[i].ContractID == req.ContractID && views[i].Entry.ID == req.EntryID {
			target = &views[i]
			break
		}
	}
	if target == nil {
		response.NotFound(c, "payment entry not found")
		return
	}
	if target.Status == services.PaymentStatusPaid {
		response.BadRequest(c, "payment is already settled")
		return
	}

	tone := req.Tone
	if tone == "" {
		tone = services.ToneForDaysOverdue(target.DaysOverdue)
	}

	comm, err := h.reminderService.SendManualReminder(target, tone)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, comm)
}

// RunReminderSweep triggers the scheduled reminder sweep immediately
// POST /api/payments/reminders/run
func (h *PaymentHandler) RunReminderSweep(c *gin.Context) {
	sent, err := h.reminderService.RunSweep(time.Now())
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, gin.H{"reminders_sent": sent})
}
