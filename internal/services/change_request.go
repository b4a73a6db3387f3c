package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"gorm.io/gorm"
)

var changeTypes = map[string]bool{
	models.ChangeTypeScope:    true,
	models.ChangeTypeTimeline: true,
	models.ChangeTypeBudget:   true,
	models.ChangeTypeFeature:  true,
}

type ChangeRequestService struct {
	db *gorm.DB
}

func NewChangeRequestService(db *gorm.DB) *ChangeRequestService {
	return &ChangeRequestService{db: db}
}

type CreateChangeRequest struct {
	RequestText string `json:"request_text" binding:"required"`
	Type        string `json:"type" binding:"required"`
	ClientEmail string `json:"client_email"`
}

// Create records a new change request in the pending state against an
// existing contract.
func (s *ChangeRequestService) Create(contractID, userID uint, req *CreateChangeRequest) (*models.ChangeRequest, error) {
	if req.RequestText == "" {
		return nil, fmt.Errorf("%w: request_text is required", ErrValidation)
	}
	if !changeTypes[req.Type] {
		return nil, fmt.Errorf("%w: unknown change request type %q", ErrValidation, req.Type)
	}

	var contract models.Contract
	if err := s.db.Where("id = ? AND user_id = ?", contractID, userID).First(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract %d", ErrNotFound, contractID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	cr := &models.ChangeRequest{
		ContractID:  contractID,
		UserID:      userID,
		RequestText: req.RequestText,
		Type:        req.Type,
		ClientEmail: req.ClientEmail,
		Status:      models.ChangeStatusPending,
	}
	if err := s.db.Create(cr).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	PublishChangeEvent(cr.ID, cr.ContractID, cr.Status, "")
	return cr, nil
}

// AttachAnalysis stores the impact analysis and moves pending → analyzed.
func (s *ChangeRequestService) AttachAnalysis(id uint, analysis *models.ChangeAnalysis) error {
	if analysis == nil || len(analysis.Options) == 0 {
		return fmt.Errorf("%w: analysis with at least one option is required", ErrValidation)
	}
	if analysis.AnalyzedAt.IsZero() {
		analysis.AnalyzedAt = time.Now()
	}

	cr, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if cr.Status != models.ChangeStatusPending {
		return fmt.Errorf("%w: change request %d is %s, expected pending", ErrInvalidStateTransition, id, cr.Status)
	}

	result := s.db.Model(&models.ChangeRequest{}).
		Where("id = ? AND status = ?", id, models.ChangeStatusPending).
		Updates(map[string]interface{}{
			"status":   models.ChangeStatusAnalyzed,
			"analysis": analysis,
		})
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: change request %d changed state concurrently", ErrInvalidStateTransition, id)
	}

	PublishChangeEvent(id, cr.ContractID, models.ChangeStatusAnalyzed, "")
	return nil
}

// FailAnalysis records an analysis failure without advancing the lifecycle;
// the request stays pending and can be re-analyzed.
func (s *ChangeRequestService) FailAnalysis(id uint, reason string) error {
	cr, err := s.GetByID(id)
	if err != nil {
		return err
	}
	result := s.db.Model(&models.ChangeRequest{}).
		Where("id = ?", id).
		Update("error_message", reason)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Error)
	}
	PublishChangeEvent(id, cr.ContractID, cr.Status, reason)
	return nil
}

// Decide moves analyzed → approved or rejected. Approval requires a
// selectedOption index that points into the analysis option list.
func (s *ChangeRequestService) Decide(id uint, approved bool, selectedOption *int) error {
	cr, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if cr.Status != models.ChangeStatusAnalyzed {
		return fmt.Errorf("%w: change request %d is %s, expected analyzed", ErrInvalidStateTransition, id, cr.Status)
	}

	target := models.ChangeStatusRejected
	updates := map[string]interface{}{}

	if approved {
		if selectedOption == nil {
			return fmt.Errorf("%w: approval requires a selected option", ErrInvalidOption)
		}
		if cr.Analysis == nil || *selectedOption < 0 || *selectedOption >= len(cr.Analysis.Options) {
			return fmt.Errorf("%w: option %d out of range", ErrInvalidOption, *selectedOption)
		}
		target = models.ChangeStatusApproved
		updates["selected_option"] = *selectedOption
	}
	updates["status"] = target

	result := s.db.Model(&models.ChangeRequest{}).
		Where("id = ? AND status = ?", id, models.ChangeStatusAnalyzed).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: change request %d changed state concurrently", ErrInvalidStateTransition, id)
	}

	PublishChangeEvent(id, cr.ContractID, target, "")
	return nil
}

// Implement moves approved → implemented. Terminal.
func (s *ChangeRequestService) Implement(id uint) error {
	cr, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if cr.Status != models.ChangeStatusApproved {
		return fmt.Errorf("%w: change request %d is %s, expected approved", ErrInvalidStateTransition, id, cr.Status)
	}

	result := s.db.Model(&models.ChangeRequest{}).
		Where("id = ? AND status = ?", id, models.ChangeStatusApproved).
		Update("status", models.ChangeStatusImplemented)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: change request %d changed state concurrently", ErrInvalidStateTransition, id)
	}

	PublishChangeEvent(id, cr.ContractID, models.ChangeStatusImplemented, "")
	return nil
}

// GetOwned fetches a change request only when it belongs to userID.
// Cross-user lookups report not found.
func (s *ChangeRequestService) GetOwned(id, userID uint) (*models.ChangeRequest, error) {
	var cr models.ChangeRequest
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&cr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: change request %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &cr, nil
}

func (s *ChangeRequestService) GetByID(id uint) (*models.ChangeRequest, error) {
	var cr models.ChangeRequest
	if err := s.db.First(&cr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: change request %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &cr, nil
}

// ListByContract returns a contract's change requests, newest first.
func (s *ChangeRequestService) ListByContract(contractID uint) ([]models.ChangeRequest, error) {
	var requests []models.ChangeRequest
	if err := s.db.Where("contract_id = ?", contractID).Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return requests, nil
}
