package handlers

import (
	"strconv"

	"github.com/freelancehub/pmcopilot/backend/internal/middleware"
	"github.com/freelancehub/pmcopilot/backend/internal/services"
	"github.com/freelancehub/pmcopilot/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommunicationHandler struct {
	commService *services.CommunicationService
}

func NewCommunicationHandler(db *gorm.DB) *CommunicationHandler {
	return &CommunicationHandler{
		commService: services.NewCommunicationService(db),
	}
}

// List returns the caller's sent communications
// GET /api/communications
func (h *CommunicationHandler) List(c *gin.Context) {
	var req services.CommunicationListRequest
	if v := c.Query("contract_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			contractID := uint(id)
			req.ContractID = &contractID
		}
	}
	req.Type = c.Query("type")
	req.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	req.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	userID := middleware.GetUserID(c)
	resp, err := h.commService.List(userID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns one communication
// GET /api/communications/:id
func (h *CommunicationHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid communication id")
		return
	}

	comm, err := h.commService.GetOwned(uint(id), middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}
	response.Success(c, comm)
}

// Templates returns the canned email templates
// GET /api/communications/templates
func (h *CommunicationHandler) Templates(c *gin.Context) {
	response.Success(c, services.Templates())
}

type statusWebhookRequest struct {
	EmailID string `json:"email_id" binding:"required"`
	Status  string `json:"status" binding:"required"` // delivered, opened, replied
}

// StatusWebhook advances a communication along its delivery progression.
// Called by the mail provider's event webhook.
// POST /api/communications/status
func (h *CommunicationHandler) StatusWebhook(c *gin.Context) {
	var req statusWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comm, err := h.commService.FindByEmailID(req.EmailID)
	if err != nil {
		serviceError(c, err)
		return
	}

	if err := h.commService.UpdateStatus(comm.ID, req.Status); err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "status updated"})
}
