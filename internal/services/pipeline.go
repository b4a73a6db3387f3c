package services

import (
	"context"
	"fmt"

	"github.com/freelancehub/pmcopilot/backend/pkg/logger"
	"gorm.io/gorm"
)

// AnalysisPipeline consumes queued analysis tasks, calls the configured
// provider and records the outcome through the lifecycle services. A
// provider failure always lands as a Fail transition so the record never
// sticks in a working state.
type AnalysisPipeline struct {
	provider  AnalysisProvider
	contracts *ContractService
	changes   *ChangeRequestService
}

func NewAnalysisPipeline(db *gorm.DB, provider AnalysisProvider) *AnalysisPipeline {
	return &AnalysisPipeline{
		provider:  provider,
		contracts: NewContractService(db),
		changes:   NewChangeRequestService(db),
	}
}

// Process dispatches a task by type. It is the processor for both the
// async worker and the sync queue fallback.
func (p *AnalysisPipeline) Process(ctx context.Context, task *AnalysisTask) error {
	switch task.Type {
	case TaskTypeContractAnalysis:
		return p.processContract(ctx, task.ContractID)
	case TaskTypeChangeAnalysis:
		return p.processChange(ctx, task.ChangeRequestID)
	default:
		return fmt.Errorf("unknown task type: %s", task.Type)
	}
}

func (p *AnalysisPipeline) processContract(ctx context.Context, contractID uint) error {
	contract, err := p.contracts.GetByID(contractID)
	if err != nil {
		return err
	}

	analysis, err := p.provider.AnalyzeContract(ctx, &ContractAnalysisRequest{
		ContractID: contract.ID,
		Title:      contract.Title,
		ClientName: contract.ClientName,
		PDFURL:     contract.PDFURL,
	})
	if err != nil {
		logger.Errorf("[Pipeline] Contract %d analysis failed: %v", contractID, err)
		if failErr := p.contracts.Fail(contractID, err.Error()); failErr != nil {
			logger.Errorf("[Pipeline] Could not record failure for contract %d: %v", contractID, failErr)
		}
		return err
	}

	if err := p.contracts.CompleteAnalysis(contractID, analysis); err != nil {
		logger.Errorf("[Pipeline] Could not store analysis for contract %d: %v", contractID, err)
		return err
	}

	logger.Infof("[Pipeline] Contract %d analyzed: %d deliverables, %d payments",
		contractID, len(analysis.Deliverables), len(analysis.PaymentPlan))
	return nil
}

func (p *AnalysisPipeline) processChange(ctx context.Context, changeID uint) error {
	change, err := p.changes.GetByID(changeID)
	if err != nil {
		return err
	}

	contract, err := p.contracts.GetByID(change.ContractID)
	if err != nil {
		return err
	}

	analysis, err := p.provider.AnalyzeChange(ctx, &ChangeAnalysisRequest{
		ChangeRequestID: change.ID,
		ContractTitle:   contract.Title,
		RequestText:     change.RequestText,
		Type:            change.Type,
	})
	if err != nil {
		logger.Errorf("[Pipeline] Change request %d analysis failed: %v", changeID, err)
		if failErr := p.changes.FailAnalysis(changeID, err.Error()); failErr != nil {
			logger.Errorf("[Pipeline] Could not record failure for change request %d: %v", changeID, failErr)
		}
		return err
	}

	if err := p.changes.AttachAnalysis(changeID, analysis); err != nil {
		logger.Errorf("[Pipeline] Could not store analysis for change request %d: %v", changeID, err)
		return err
	}

	logger.Infof("[Pipeline] Change request %d analyzed with %d options", changeID, len(analysis.Options))
	return nil
}
