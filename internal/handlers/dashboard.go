package handlers

import (
	"strconv"

	"github.com/freelancehub/pmcopilot/backend/internal/services"
	"github.com/freelancehub/pmcopilot/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	capacityService *services.CapacityService
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{
		capacityService: services.NewCapacityService(db),
	}
}

// CapacityHeatmap returns per-team capacity metrics for a company
// GET /api/dashboard/capacity?company_id=
func (h *DashboardHandler) CapacityHeatmap(c *gin.Context) {
	companyID, err := strconv.ParseUint(c.Query("company_id"), 10, 32)
	if err != nil || companyID == 0 {
		response.BadRequest(c, "company_id is required")
		return
	}

	metrics, err := h.capacityService.CompanyHeatmap(uint(companyID))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, metrics)
}

// TeamCapacity returns one team's capacity metrics
// GET /api/dashboard/capacity/teams/:id
func (h *DashboardHandler) TeamCapacity(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}

	metrics, err := h.capacityService.TeamMetricsByID(uint(teamID))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, metrics)
}

// RecomputeWorkload derives a person's workload from active assignments
// GET /api/dashboard/capacity/people/:id/recompute
func (h *DashboardHandler) RecomputeWorkload(c *gin.Context) {
	personID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid person id")
		return
	}

	pct, err := h.capacityService.RecomputeWorkload(uint(personID))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, gin.H{"person_id": personID, "derived_workload_pct": pct})
}
