package handlers

import (
	"strconv"

	"github.com/freelancehub/pmcopilot/backend/internal/middleware"
	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"github.com/freelancehub/pmcopilot/backend/internal/services"
	"github.com/freelancehub/pmcopilot/backend/pkg/logger"
	"github.com/freelancehub/pmcopilot/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ContractHandler struct {
	contractService *services.ContractService
	storage         *services.StorageService
}

// NewContractHandler wires the contract lifecycle endpoints. storage may be
// nil when MinIO is not configured; uploads are rejected in that case.
func NewContractHandler(db *gorm.DB, storage *services.StorageService) *ContractHandler {
	return &ContractHandler{
		contractService: services.NewContractService(db),
		storage:         storage,
	}
}

// Create registers a new contract in the analyzing state
// POST /api/contracts
func (h *ContractHandler) Create(c *gin.Context) {
	var req services.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	contract, err := h.contractService.Create(&req, userID)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Created(c, contract)
}

// List returns paginated contracts for the caller
// GET /api/contracts
func (h *ContractHandler) List(c *gin.Context) {
	var req services.ContractListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	resp, err := h.contractService.List(userID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns a contract by ID
// GET /api/contracts/:id
func (h *ContractHandler) GetByID(c *gin.Context) {
	id, err := contractID(c)
	if err != nil {
		response.BadRequest(c, "invalid contract id")
		return
	}

	contract, err := h.contractService.GetOwned(id, middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, contract)
}

// UploadPDF stores the contract document and queues it for analysis
// POST /api/contracts/:id/pdf
func (h *ContractHandler) UploadPDF(c *gin.Context) {
	id, err := contractID(c)
	if err != nil {
		response.BadRequest(c, "invalid contract id")
		return
	}

	if _, err := h.contractService.GetOwned(id, middleware.GetUserID(c)); err != nil {
		serviceError(c, err)
		return
	}

	if h.storage == nil {
		response.ServerError(c, "document storage is not configured")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	defer file.Close()

	objectName, url, err := h.storage.UploadContractPDF(
		c.Request.Context(), id, fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	if err := h.contractService.AttachPDF(id, url, objectName); err != nil {
		serviceError(c, err)
		return
	}

	if err := h.enqueueAnalysis(id); err != nil {
		h.queueFailure(c, id, err)
		return
	}
	response.Success(c, gin.H{"pdf_url": url, "pdf_path": objectName})
}

// Retry re-runs analysis for a contract stuck in the error state
// POST /api/contracts/:id/retry
func (h *ContractHandler) Retry(c *gin.Context) {
	id, err := contractID(c)
	if err != nil {
		response.BadRequest(c, "invalid contract id")
		return
	}

	contract, err := h.contractService.GetOwned(id, middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}
	if contract.PDFURL == "" {
		response.BadRequest(c, "contract has no document to analyze")
		return
	}

	if err := h.contractService.AttachPDF(id, contract.PDFURL, contract.PDFPath); err != nil {
		serviceError(c, err)
		return
	}

	if err := h.enqueueAnalysis(id); err != nil {
		h.queueFailure(c, id, err)
		return
	}
	response.Success(c, gin.H{"message": "analysis retry initiated"})
}

type analysisCallbackRequest struct {
	Analysis *models.ContractAnalysis `json:"analysis"`
	Error    string                   `json:"error"`
}

// AnalysisCallback records the result of an external analysis run. Either
// an analysis document or an error must be present.
// POST /api/contracts/:id/analysis
func (h *ContractHandler) AnalysisCallback(c *gin.Context) {
	id, err := contractID(c)
	if err != nil {
		response.BadRequest(c, "invalid contract id")
		return
	}

	var req analysisCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	switch {
	case req.Analysis != nil:
		if err := h.contractService.CompleteAnalysis(id, req.Analysis); err != nil {
			serviceError(c, err)
			return
		}
	case req.Error != "":
		if err := h.contractService.Fail(id, req.Error); err != nil {
			serviceError(c, err)
			return
		}
	default:
		response.BadRequest(c, "analysis or error is required")
		return
	}

	response.Success(c, gin.H{"message": "analysis recorded"})
}

// Activate promotes an analyzed contract
// POST /api/contracts/:id/activate
func (h *ContractHandler) Activate(c *gin.Context) {
	h.lifecycle(c, h.contractService.Activate)
}

// Complete closes out an active contract
// POST /api/contracts/:id/complete
func (h *ContractHandler) Complete(c *gin.Context) {
	h.lifecycle(c, h.contractService.Complete)
}

// Cancel terminates an active contract
// POST /api/contracts/:id/cancel
func (h *ContractHandler) Cancel(c *gin.Context) {
	h.lifecycle(c, h.contractService.Cancel)
}

func (h *ContractHandler) lifecycle(c *gin.Context, fn func(uint) error) {
	id, err := contractID(c)
	if err != nil {
		response.BadRequest(c, "invalid contract id")
		return
	}

	if _, err := h.contractService.GetOwned(id, middleware.GetUserID(c)); err != nil {
		serviceError(c, err)
		return
	}

	if err := fn(id); err != nil {
		serviceError(c, err)
		return
	}

	contract, err := h.contractService.GetByID(id)
	if err != nil {
		serviceError(c, err)
		return
	}
	response.Success(c, contract)
}

func (h *ContractHandler) enqueueAnalysis(id uint) error {
	queue := services.GetTaskQueue()
	if queue == nil {
		return nil
	}
	return queue.Enqueue(&services.AnalysisTask{
		Type:       services.TaskTypeContractAnalysis,
		ContractID: id,
	})
}

// queueFailure records a failed analysis dispatch so the contract does not
// sit in analyzing forever, then reports the outage to the caller.
func (h *ContractHandler) queueFailure(c *gin.Context, id uint, err error) {
	logger.Errorf("[Contracts] Failed to queue analysis for contract %d: %v", id, err)
	if failErr := h.contractService.Fail(id, "analysis could not be queued: "+err.Error()); failErr != nil {
		logger.Errorf("[Contracts] Failed to record queue failure for contract %d: %v", id, failErr)
	}
	response.ServiceUnavailable(c, "analysis could not be queued")
}

func contractID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
