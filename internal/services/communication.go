package services

import (
	"fmt"

	"github.com/freelancehub/pmcopilot/backend/internal/models"
	"gorm.io/gorm"
)

// commStatusRank orders the delivery progression. A status may only move
// forward; failed is terminal.
var commStatusRank = map[string]int{
	models.CommStatusSent:      0,
	models.CommStatusDelivered: 1,
	models.CommStatusOpened:    2,
	models.CommStatusReplied:   3,
}

type CommunicationService struct {
	db *gorm.DB
}

func NewCommunicationService(db *gorm.DB) *CommunicationService {
	return &CommunicationService{db: db}
}

type CommunicationListRequest struct {
	ContractID *uint
	Type       string
	Page       int
	PageSize   int
}

type CommunicationListResponse struct {
	Total int64                  `json:"total"`
	Items []models.Communication `json:"items"`
}

func (s *CommunicationService) List(userID uint, req *CommunicationListRequest) (*CommunicationListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Communication{}).Where("user_id = ?", userID)
	if req.ContractID != nil {
		query = query.Where("contract_id = ?", *req.ContractID)
	}
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("%w: count communications: %v", ErrStoreUnavailable, err)
	}

	var items []models.Communication
	if err := query.Order("sent_at DESC").
		Offset((req.Page - 1) * req.PageSize).
		Limit(req.PageSize).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("%w: list communications: %v", ErrStoreUnavailable, err)
	}

	return &CommunicationListResponse{Total: total, Items: items}, nil
}

// GetOwned fetches a communication only when it belongs to userID.
// Cross-user lookups report not found.
func (s *CommunicationService) GetOwned(id, userID uint) (*models.Communication, error) {
	var comm models.Communication
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&comm).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: communication %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: load communication %d: %v", ErrStoreUnavailable, id, err)
	}
	return &comm, nil
}

func (s *CommunicationService) GetByID(id uint) (*models.Communication, error) {
	var comm models.Communication
	if err := s.db.First(&comm, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: communication %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: load communication %d: %v", ErrStoreUnavailable, id, err)
	}
	return &comm, nil
}

// UpdateStatus advances a communication along the delivery progression.
// Moving backwards or out of a terminal state is rejected.
func (s *CommunicationService) UpdateStatus(id uint, status string) error {
	newRank, ok := commStatusRank[status]
	if !ok {
		return fmt.Errorf("%w: unknown communication status %q", ErrValidation, status)
	}

	comm, err := s.GetByID(id)
	if err != nil {
		return err
	}

	currentRank, ok := commStatusRank[comm.Status]
	if !ok || newRank <= currentRank {
		return fmt.Errorf("%w: communication %d cannot move %s -> %s",
			ErrInvalidStateTransition, id, comm.Status, status)
	}

	result := s.db.Model(&models.Communication{}).
		Where("id = ? AND status = ?", id, comm.Status).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("%w: update communication %d: %v", ErrStoreUnavailable, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: communication %d changed concurrently", ErrInvalidStateTransition, id)
	}
	return nil
}

// FindByEmailID resolves a provider message id to its communication row,
// for inbound delivery webhooks.
func (s *CommunicationService) FindByEmailID(emailID string) (*models.Communication, error) {
	var comm models.Communication
	if err := s.db.Where("email_id = ?", emailID).First(&comm).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: communication with email id %s", ErrNotFound, emailID)
		}
		return nil, fmt.Errorf("%w: load communication: %v", ErrStoreUnavailable, err)
	}
	return &comm, nil
}
