package handlers

import (
	"github.com/freelancehub/pmcopilot/backend/internal/services"
	"github.com/freelancehub/pmcopilot/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SettingsHandler exposes SystemConfig rows grouped by concern (email,
// reminders) plus the audit log.
type SettingsHandler struct {
	configService *services.SystemConfigService
	logService    *services.SystemLogService
}

func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{
		configService: services.NewSystemConfigService(db),
		logService:    services.NewSystemLogService(db),
	}
}

// GetGroup returns all config rows in a group
// GET /api/settings/:group
func (h *SettingsHandler) GetGroup(c *gin.Context) {
	group := c.Param("group")
	configs, err := h.configService.GetByGroup(group)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, configs)
}

type setConfigRequest struct {
	Values map[string]string `json:"values" binding:"required"`
}

// SetGroup updates config values by key
// PUT /api/settings/:group
func (h *SettingsHandler) SetGroup(c *gin.Context) {
	var req setConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	for key, value := range req.Values {
		if err := h.configService.Set(key, value); err != nil {
			response.ServerError(c, err.Error())
			return
		}
	}

	configs, err := h.configService.GetByGroup(c.Param("group"))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, configs)
}

// ListLogs returns paginated system audit logs
// GET /api/settings/logs
func (h *SettingsHandler) ListLogs(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.logService.List(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, resp)
}
