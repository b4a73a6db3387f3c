package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Contract statuses
const (
	ContractStatusAnalyzing = "analyzing"
	ContractStatusAnalyzed  = "analyzed"
	ContractStatusActive    = "active"
	ContractStatusCompleted = "completed"
	ContractStatusCancelled = "cancelled"
	ContractStatusError     = "error"
)

// Contract represents a client engagement document tracked through an
// analysis/execution lifecycle.
type Contract struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	UserID       uint              `gorm:"index;not null" json:"user_id"`
	Title        string            `gorm:"size:200;not null" json:"title"`
	ClientName   string            `gorm:"size:200;not null" json:"client_name"`
	ClientEmail  string            `gorm:"size:255;not null" json:"client_email"`
	Status       string            `gorm:"size:50;default:analyzing;index" json:"status"`
	PDFURL       string            `gorm:"size:1000" json:"pdf_url,omitempty"`
	PDFPath      string            `gorm:"size:500" json:"pdf_path,omitempty"`
	Analysis     *ContractAnalysis `gorm:"type:text" json:"analysis,omitempty"`
	ErrorMessage string            `gorm:"type:text" json:"error_message,omitempty"`
	UploadedAt   *time.Time        `json:"uploaded_at,omitempty"`
	CreatedAt    time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	DeletedAt    gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (Contract) TableName() string { return "contracts" }

// ContractAnalysis is the structured result produced by the analysis provider.
// It is stored as a single JSON document and only ever replaced whole.
type ContractAnalysis struct {
	Deliverables []Deliverable      `json:"deliverables"`
	Milestones   []Milestone        `json:"milestones"`
	PaymentPlan  []PaymentPlanEntry `json:"payment_plan"`
	Risks        []Risk             `json:"risks"`
	Ambiguities  []Ambiguity        `json:"ambiguities,omitempty"`
	Timeline     TimelineEstimate   `json:"timeline"`
	Summary      string             `json:"summary"`
	AnalyzedAt   time.Time          `json:"analyzed_at"`
}

func (a *ContractAnalysis) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ContractAnalysis", value)
	}
}

func (a ContractAnalysis) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

type TimelineEstimate struct {
	Optimistic  string `json:"optimistic"`
	Realistic   string `json:"realistic"`
	Pessimistic string `json:"pessimistic"`
}

type Deliverable struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	AcceptanceCriteria string     `json:"acceptance_criteria"`
	Status             string     `json:"status"` // pending, in-progress, completed
	DueDate            string     `json:"due_date,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

type Milestone struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     string     `json:"due_date"` // YYYY-MM-DD
	Status      string     `json:"status"`   // pending, in-progress, completed
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// PaymentPlanEntry links a payment to a milestone. Its visible status is
// derived from DueDate and PaidAt, never stored independently.
type PaymentPlanEntry struct {
	ID            string     `json:"id"`
	MilestoneID   string     `json:"milestone_id"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	DueDate       string     `json:"due_date"` // YYYY-MM-DD
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"`
}

type Risk struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Severity    string  `json:"severity"`    // low, medium, high, critical
	Probability float64 `json:"probability"` // 0-100
	Impact      float64 `json:"impact"`      // 0-100
	Mitigation  string  `json:"mitigation"`
	Status      string  `json:"status"` // open, mitigated, closed
}

// Ambiguity flags an unclear contract clause with a suggested redline.
type Ambiguity struct {
	ID                     string   `json:"id"`
	Clause                 string   `json:"clause"`
	Issue                  string   `json:"issue"`
	Severity               string   `json:"severity"` // low, medium, high, critical
	SuggestedRedline       string   `json:"suggested_redline,omitempty"`
	ClarificationQuestions []string `json:"clarification_questions,omitempty"`
}
