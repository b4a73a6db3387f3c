package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ChangeRequest statuses
const (
	ChangeStatusPending     = "pending"
	ChangeStatusAnalyzed    = "analyzed"
	ChangeStatusApproved    = "approved"
	ChangeStatusRejected    = "rejected"
	ChangeStatusImplemented = "implemented"
)

// ChangeRequest types
const (
	ChangeTypeScope    = "scope-change"
	ChangeTypeTimeline = "timeline-change"
	ChangeTypeBudget   = "budget-change"
	ChangeTypeFeature  = "feature-request"
)

// ChangeRequest is a client-initiated modification proposal requiring impact
// analysis and a decision.
type ChangeRequest struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ContractID     uint            `gorm:"index;not null" json:"contract_id"`
	Contract       *Contract       `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
	UserID         uint            `gorm:"index;not null" json:"user_id"`
	RequestText    string          `gorm:"type:text;not null" json:"request_text"`
	Type           string          `gorm:"size:50;not null" json:"type"`
	Status         string          `gorm:"size:50;default:pending;index" json:"status"`
	Analysis       *ChangeAnalysis `gorm:"type:text" json:"analysis,omitempty"`
	SelectedOption *int            `json:"selected_option,omitempty"`
	ClientEmail    string          `gorm:"size:255" json:"client_email,omitempty"`
	ErrorMessage   string          `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (ChangeRequest) TableName() string { return "change_requests" }

// ChangeAnalysis holds the impact assessment and implementation options for a
// change request, stored as one JSON document.
type ChangeAnalysis struct {
	Type       string         `json:"type"`
	Impact     ChangeImpact   `json:"impact"`
	Options    []ChangeOption `json:"options"`
	AnalyzedAt time.Time      `json:"analyzed_at"`
}

func (a *ChangeAnalysis) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ChangeAnalysis", value)
	}
}

func (a ChangeAnalysis) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

type ChangeImpact struct {
	Time  string `json:"time"`
	Cost  string `json:"cost"`
	Scope string `json:"scope"`
}

type ChangeOption struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Timeline    string `json:"timeline"`
	Cost        string `json:"cost"`
}
