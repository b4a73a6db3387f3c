package handlers

import (
	"strconv"

	"github.com/freelancehub/pmcopilot/backend/internal/middleware"
	"github.com/freelancehub/pmcopilot/backend/internal/services"
	"github.com/freelancehub/pmcopilot/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PlanHandler struct {
	planService     *services.PlanService
	contractService *services.ContractService
}

func NewPlanHandler(db *gorm.DB) *PlanHandler {
	return &PlanHandler{
		planService:     services.NewPlanService(db),
		contractService: services.NewContractService(db),
	}
}

// Create inserts the next plan version for a contract (initial plan or replan)
// POST /api/contracts/:id/plans
func (h *PlanHandler) Create(c *gin.Context) {
	contractID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid contract id")
		return
	}

	var req services.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	plan, err := h.planService.Create(uint(contractID), userID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Created(c, plan)
}

// ListVersions returns the full version history for a contract
// GET /api/contracts/:id/plans
func (h *PlanHandler) ListVersions(c *gin.Context) {
	contractID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid contract id")
		return
	}

	if _, err := h.contractService.GetOwned(uint(contractID), middleware.GetUserID(c)); err != nil {
		serviceError(c, err)
		return
	}

	plans, err := h.planService.ListVersions(uint(contractID))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, plans)
}

// GetVersion returns one plan version
// GET /api/contracts/:id/plans/:version
func (h *PlanHandler) GetVersion(c *gin.Context) {
	contractID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid contract id")
		return
	}

	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version < 1 {
		response.BadRequest(c, "invalid plan version")
		return
	}

	if _, err := h.contractService.GetOwned(uint(contractID), middleware.GetUserID(c)); err != nil {
		serviceError(c, err)
		return
	}

	plan, err := h.planService.GetVersion(uint(contractID), version)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, plan)
}

// Supersede manually retires a plan version
// POST /api/contracts/:id/plans/:version/supersede
func (h *PlanHandler) Supersede(c *gin.Context) {
	contractID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid contract id")
		return
	}

	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version < 1 {
		response.BadRequest(c, "invalid plan version")
		return
	}

	if _, err := h.contractService.GetOwned(uint(contractID), middleware.GetUserID(c)); err != nil {
		serviceError(c, err)
		return
	}

	if err := h.planService.Supersede(uint(contractID), version); err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "plan version superseded"})
}
