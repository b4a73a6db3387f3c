package services

import (
	"errors"
	"fmt"

	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"gorm.io/gorm"
)

// PlanService maintains the append-only sequence of plan versions per
// contract. Versions are copy-on-write snapshots; a replan inserts a new row
// and never touches prior ones (beyond the optional supersede mark).
type PlanService struct {
	db *gorm.DB

	// AutoSupersede controls whether creating a new version marks prior
	// active versions as superseded in the same transaction. When false,
	// older versions keep their status and must be superseded manually.
	AutoSupersede bool
}

func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{db: db, AutoSupersede: true}
}

type CreatePlanRequest struct {
	Title        string                  `json:"title"`
	Sprints      []models.Sprint         `json:"sprints" binding:"required"`
	Timeline     models.TimelineEstimate `json:"timeline"`
	ChangeReason string                  `json:"change_reason"`
}

// planCreateRetries bounds the version-conflict retry loop in Create.
const planCreateRetries = 3

// Create inserts the next plan version for one of userID's contracts. The
// version number is computed inside the transaction; the unique index on
// (contract_id, version) catches two replans racing under read committed,
// and the losing transaction recomputes and retries.
func (s *PlanService) Create(contractID, userID uint, req *CreatePlanRequest) (*models.Plan, error) {
	if len(req.Sprints) == 0 {
		return nil, fmt.Errorf("%w: at least one sprint is required", ErrValidation)
	}

	var contract models.Contract
	if err := s.db.Where("id = ? AND user_id = ?", contractID, userID).First(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract %d", ErrNotFound, contractID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	plan := &models.Plan{
		ContractID:   contractID,
		UserID:       userID,
		Title:        req.Title,
		Sprints:      req.Sprints,
		Timeline:     req.Timeline,
		ChangeReason: req.ChangeReason,
		Status:       models.PlanStatusActive,
	}

	var err error
	for attempt := 0; attempt < planCreateRetries; attempt++ {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			var maxVersion int
			if err := tx.Model(&models.Plan{}).
				Where("contract_id = ?", contractID).
				Select("COALESCE(MAX(version), 0)").
				Scan(&maxVersion).Error; err != nil {
				return err
			}
			plan.Version = maxVersion + 1

			if s.AutoSupersede {
				if err := tx.Model(&models.Plan{}).
					Where("contract_id = ? AND status = ?", contractID, models.PlanStatusActive).
					Update("status", models.PlanStatusSuperseded).Error; err != nil {
					return err
				}
			}

			return tx.Create(plan).Error
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		// Lost the version race; recompute MAX(version) and try again.
		plan.ID = 0
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return plan, nil
}

// ListVersions returns all plan versions for a contract, newest first.
func (s *PlanService) ListVersions(contractID uint) ([]models.Plan, error) {
	var plans []models.Plan
	err := s.db.Where("contract_id = ?", contractID).
		Order("version DESC").
		Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return plans, nil
}

// GetVersion returns one specific plan version.
func (s *PlanService) GetVersion(contractID uint, version int) (*models.Plan, error) {
	var plan models.Plan
	err := s.db.Where("contract_id = ? AND version = ?", contractID, version).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: plan version %d for contract %d", ErrNotFound, version, contractID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &plan, nil
}

// Supersede manually marks a plan version superseded. Used when
// AutoSupersede is disabled.
func (s *PlanService) Supersede(contractID uint, version int) error {
	result := s.db.Model(&models.Plan{}).
		Where("contract_id = ? AND version = ? AND status = ?",
			contractID, version, models.PlanStatusActive).
		Update("status", models.PlanStatusSuperseded)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: no active plan version %d for contract %d", ErrInvalidStateTransition, version, contractID)
	}
	return nil
}
