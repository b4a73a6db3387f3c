package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/freelancehub/pmcopilot/backend/internal/middleware"
	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"github.com/freelancehub/pmcopilot/backend/internal/services"
	"github.com/freelancehub/pmcopilot/backend/pkg/logger"
	"github.com/freelancehub/pmcopilot/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ChangeRequestHandler struct {
	db              *gorm.DB
	changeService   *services.ChangeRequestService
	contractService *services.ContractService
	emailService    *services.EmailService
}

func NewChangeRequestHandler(db *gorm.DB) *ChangeRequestHandler {
	return &ChangeRequestHandler{
		db:              db,
		changeService:   services.NewChangeRequestService(db),
		contractService: services.NewContractService(db),
		emailService:    services.NewEmailService(db),
	}
}

// Create files a change request against a contract and queues its analysis
// POST /api/contracts/:id/changes
func (h *ChangeRequestHandler) Create(c *gin.Context) {
	contractID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid contract id")
		return
	}

	var req services.CreateChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	cr, err := h.changeService.Create(uint(contractID), userID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	if queue := services.GetTaskQueue(); queue != nil {
		task := &services.AnalysisTask{
			Type:            services.TaskTypeChangeAnalysis,
			ChangeRequestID: cr.ID,
		}
		if err := queue.Enqueue(task); err != nil {
			logger.Errorf("[Changes] Failed to queue analysis for change request %d: %v", cr.ID, err)
			if failErr := h.changeService.FailAnalysis(cr.ID, "analysis could not be queued: "+err.Error()); failErr != nil {
				logger.Errorf("[Changes] Failed to record queue failure for change request %d: %v", cr.ID, failErr)
			}
			response.ServiceUnavailable(c, "change request saved but analysis could not be queued")
			return
		}
	}

	response.Created(c, cr)
}

// ListByContract returns a contract's change requests
// GET /api/contracts/:id/changes
func (h *ChangeRequestHandler) ListByContract(c *gin.Context) {
	contractID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid contract id")
		return
	}

	if _, err := h.contractService.GetOwned(uint(contractID), middleware.GetUserID(c)); err != nil {
		serviceError(c, err)
		return
	}

	items, err := h.changeService.ListByContract(uint(contractID))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, items)
}

// GetByID returns a change request by ID
// GET /api/changes/:id
func (h *ChangeRequestHandler) GetByID(c *gin.Context) {
	id, err := changeID(c)
	if err != nil {
		response.BadRequest(c, "invalid change request id")
		return
	}

	cr, err := h.changeService.GetOwned(id, middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, cr)
}

type changeAnalysisCallbackRequest struct {
	Analysis *models.ChangeAnalysis `json:"analysis"`
	Error    string                 `json:"error"`
}

// AnalysisCallback records an externally produced impact analysis
// POST /api/changes/:id/analysis
func (h *ChangeRequestHandler) AnalysisCallback(c *gin.Context) {
	id, err := changeID(c)
	if err != nil {
		response.BadRequest(c, "invalid change request id")
		return
	}

	var req changeAnalysisCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	switch {
	case req.Analysis != nil:
		if err := h.changeService.AttachAnalysis(id, req.Analysis); err != nil {
			serviceError(c, err)
			return
		}
	case req.Error != "":
		if err := h.changeService.FailAnalysis(id, req.Error); err != nil {
			serviceError(c, err)
			return
		}
	default:
		response.BadRequest(c, "analysis or error is required")
		return
	}

	response.Success(c, gin.H{"message": "analysis recorded"})
}

type decisionRequest struct {
	Approved       bool `json:"approved"`
	SelectedOption *int `json:"selected_option"`
	NotifyClient   bool `json:"notify_client"`
}

// Decide approves or rejects an analyzed change request
// POST /api/changes/:id/decision
func (h *ChangeRequestHandler) Decide(c *gin.Context) {
	id, err := changeID(c)
	if err != nil {
		response.BadRequest(c, "invalid change request id")
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	if _, err := h.changeService.GetOwned(id, userID); err != nil {
		serviceError(c, err)
		return
	}

	if err := h.changeService.Decide(id, req.Approved, req.SelectedOption); err != nil {
		serviceError(c, err)
		return
	}

	cr, err := h.changeService.GetByID(id)
	if err != nil {
		serviceError(c, err)
		return
	}

	if req.NotifyClient && req.Approved {
		h.sendChangeOrder(c, cr)
	}

	response.Success(c, cr)
}

// Implement marks an approved change request as delivered
// POST /api/changes/:id/implement
func (h *ChangeRequestHandler) Implement(c *gin.Context) {
	id, err := changeID(c)
	if err != nil {
		response.BadRequest(c, "invalid change request id")
		return
	}

	if _, err := h.changeService.GetOwned(id, middleware.GetUserID(c)); err != nil {
		serviceError(c, err)
		return
	}

	if err := h.changeService.Implement(id); err != nil {
		serviceError(c, err)
		return
	}

	cr, err := h.changeService.GetByID(id)
	if err != nil {
		serviceError(c, err)
		return
	}
	response.Success(c, cr)
}

// sendChangeOrder emails the change-order proposal to the client. Send
// failures are non-fatal; the decision already stands.
func (h *ChangeRequestHandler) sendChangeOrder(c *gin.Context, cr *models.ChangeRequest) {
	contract, err := h.contractService.GetByID(cr.ContractID)
	if err != nil {
		return
	}

	to := cr.ClientEmail
	if to == "" {
		to = contract.ClientEmail
	}
	if to == "" || cr.Analysis == nil {
		return
	}

	template, ok := services.TemplateByID("change_order_proposal")
	if !ok {
		return
	}

	var options strings.Builder
	for i, opt := range cr.Analysis.Options {
		fmt.Fprintf(&options, "%d. %s - %s (%s, %s)\n", i+1, opt.Title, opt.Description, opt.Timeline, opt.Cost)
	}

	var sender models.User
	_ = h.db.First(&sender, middleware.GetUserID(c)).Error

	subject, body := template.Render(map[string]string{
		"clientName":     contract.ClientName,
		"contractTitle":  contract.Title,
		"requestText":    cr.RequestText,
		"analysis":       cr.Analysis.Impact.Scope,
		"options":        options.String(),
		"freelancerName": sender.Name,
	})

	changeRequestID := cr.ID
	contractID := cr.ContractID
	_, _ = h.emailService.Send(&services.OutgoingEmail{
		UserID:          middleware.GetUserID(c),
		ContractID:      &contractID,
		ChangeRequestID: &changeRequestID,
		Type:            models.CommTypeChangeOrder,
		To:              to,
		Subject:         subject,
		Body:            body,
	})
}

func changeID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
