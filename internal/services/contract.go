package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"gorm.io/gorm"
)

// contractTransitions is the allowed status graph. Everything else is
// rejected with ErrInvalidStateTransition.
var contractTransitions = map[string][]string{
	models.ContractStatusAnalyzing: {models.ContractStatusAnalyzed, models.ContractStatusError},
	models.ContractStatusAnalyzed:  {models.ContractStatusActive},
	models.ContractStatusActive:    {models.ContractStatusCompleted, models.ContractStatusCancelled},
	models.ContractStatusError:     {models.ContractStatusAnalyzing}, // retry
}

func contractCanTransition(from, to string) bool {
	for _, t := range contractTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

type ContractService struct {
	db *gorm.DB
}

func NewContractService(db *gorm.DB) *ContractService {
	return &ContractService{db: db}
}

type CreateContractRequest struct {
	Title       string `json:"title" binding:"required"`
	ClientName  string `json:"client_name" binding:"required"`
	ClientEmail string `json:"client_email" binding:"required,email"`
}

// Create inserts a new contract in the analyzing state. The PDF and analysis
// arrive later through AttachPDF and CompleteAnalysis.
func (s *ContractService) Create(req *CreateContractRequest, userID uint) (*models.Contract, error) {
	if req.Title == "" || req.ClientName == "" || req.ClientEmail == "" || userID == 0 {
		return nil, fmt.Errorf("%w: title, client_name and client_email are required", ErrValidation)
	}

	contract := &models.Contract{
		UserID:      userID,
		Title:       req.Title,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		Status:      models.ContractStatusAnalyzing,
	}
	if err := s.db.Create(contract).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	PublishContractEvent(contract.ID, contract.Status, "")
	return contract, nil
}

// AttachPDF records the uploaded document location and (re-)enters the
// analyzing state. Allowed from analyzing (first upload or replacement) and
// from error (retry after a failed analysis run).
func (s *ContractService) AttachPDF(id uint, url, path string) error {
	contract, err := s.GetByID(id)
	if err != nil {
		return err
	}

	if contract.Status != models.ContractStatusAnalyzing && contract.Status != models.ContractStatusError {
		return fmt.Errorf("%w: cannot attach pdf to %s contract", ErrInvalidStateTransition, contract.Status)
	}

	now := time.Now()
	result := s.db.Model(&models.Contract{}).
		Where("id = ? AND status IN ?", id, []string{models.ContractStatusAnalyzing, models.ContractStatusError}).
		Updates(map[string]interface{}{
			"status":        models.ContractStatusAnalyzing,
			"pdf_url":       url,
			"pdf_path":      path,
			"uploaded_at":   now,
			"error_message": "",
		})
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		// Lost a race against a concurrent transition.
		return fmt.Errorf("%w: contract %d changed state concurrently", ErrInvalidStateTransition, id)
	}

	PublishContractEvent(id, models.ContractStatusAnalyzing, "")
	return nil
}

// CompleteAnalysis attaches the analysis result and moves the contract to
// analyzed. The analysis and status land in one write so the invariant
// "analyzed implies analysis present" holds at all times.
func (s *ContractService) CompleteAnalysis(id uint, analysis *models.ContractAnalysis) error {
	if analysis == nil {
		return fmt.Errorf("%w: analysis is required", ErrValidation)
	}
	if analysis.AnalyzedAt.IsZero() {
		analysis.AnalyzedAt = time.Now()
	}

	contract, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if !contractCanTransition(contract.Status, models.ContractStatusAnalyzed) {
		return fmt.Errorf("%w: cannot complete analysis on %s contract", ErrInvalidStateTransition, contract.Status)
	}

	result := s.db.Model(&models.Contract{}).
		Where("id = ? AND status = ?", id, models.ContractStatusAnalyzing).
		Updates(map[string]interface{}{
			"status":   models.ContractStatusAnalyzed,
			"analysis": analysis,
		})
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: contract %d changed state concurrently", ErrInvalidStateTransition, id)
	}

	PublishContractEvent(id, models.ContractStatusAnalyzed, "")
	return nil
}

// Fail marks an analysis run as failed. The contract can be retried later by
// re-submitting the PDF.
func (s *ContractService) Fail(id uint, reason string) error {
	contract, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if !contractCanTransition(contract.Status, models.ContractStatusError) {
		return fmt.Errorf("%w: cannot fail %s contract", ErrInvalidStateTransition, contract.Status)
	}

	result := s.db.Model(&models.Contract{}).
		Where("id = ? AND status = ?", id, models.ContractStatusAnalyzing).
		Updates(map[string]interface{}{
			"status":        models.ContractStatusError,
			"error_message": reason,
		})
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: contract %d changed state concurrently", ErrInvalidStateTransition, id)
	}

	PublishContractEvent(id, models.ContractStatusError, reason)
	return nil
}

// Activate promotes an analyzed contract to active (manual promotion after
// the user reviews the analysis).
func (s *ContractService) Activate(id uint) error {
	return s.transition(id, models.ContractStatusAnalyzed, models.ContractStatusActive)
}

// Complete closes out an active contract.
func (s *ContractService) Complete(id uint) error {
	return s.transition(id, models.ContractStatusActive, models.ContractStatusCompleted)
}

// Cancel soft-terminates an active contract. The row is kept; nothing is
// hard-deleted in the contract lifecycle.
func (s *ContractService) Cancel(id uint) error {
	return s.transition(id, models.ContractStatusActive, models.ContractStatusCancelled)
}

// transition performs a guarded single-column status move. The conditional
// WHERE ensures at most one of two racing transitions wins.
func (s *ContractService) transition(id uint, from, to string) error {
	contract, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if contract.Status != from || !contractCanTransition(from, to) {
		return fmt.Errorf("%w: contract %d is %s, cannot move to %s", ErrInvalidStateTransition, id, contract.Status, to)
	}

	result := s.db.Model(&models.Contract{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: contract %d changed state concurrently", ErrInvalidStateTransition, id)
	}

	PublishContractEvent(id, to, "")
	return nil
}

// GetOwned fetches a contract only when it belongs to userID. Cross-user
// lookups report not found rather than forbidden so contract IDs do not leak.
func (s *ContractService) GetOwned(id, userID uint) (*models.Contract, error) {
	var contract models.Contract
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &contract, nil
}

func (s *ContractService) GetByID(id uint) (*models.Contract, error) {
	var contract models.Contract
	if err := s.db.First(&contract, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &contract, nil
}

type ContractListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status"`
	Client   string `form:"client"`
	Search   string `form:"search"`
}

type ContractListResponse struct {
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Items    []models.Contract `json:"items"`
}

// List returns the caller's contracts, newest first.
func (s *ContractService) List(userID uint, req *ContractListRequest) (*ContractListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	var contracts []models.Contract
	var total int64

	query := s.db.Model(&models.Contract{}).Where("user_id = ?", userID)

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Client != "" {
		query = query.Where("client_name LIKE ?", "%"+req.Client+"%")
	}
	if req.Search != "" {
		query = query.Where("title LIKE ?", "%"+req.Search+"%")
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&contracts).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return &ContractListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    contracts,
	}, nil
}
