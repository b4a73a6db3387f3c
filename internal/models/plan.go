package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Plan statuses
const (
	PlanStatusDraft      = "draft"
	PlanStatusActive     = "active"
	PlanStatusCompleted  = "completed"
	PlanStatusSuperseded = "superseded"
)

// Sprint statuses
const (
	SprintStatusPlanned    = "planned"
	SprintStatusInProgress = "in-progress"
	SprintStatusCompleted  = "completed"
)

// Task statuses
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in-progress"
	TaskStatusDone       = "done"
)

// Plan is one immutable version of a contract's execution schedule. A replan
// creates a new row with the next version number; prior rows are never edited,
// which keeps a full audit trail of replanning.
type Plan struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	ContractID   uint             `gorm:"not null;uniqueIndex:idx_plan_contract_version" json:"contract_id"`
	UserID       uint             `gorm:"index;not null" json:"user_id"`
	Version      int              `gorm:"not null;uniqueIndex:idx_plan_contract_version" json:"version"`
	Title        string           `gorm:"size:200" json:"title"`
	Sprints      SprintList       `gorm:"type:text" json:"sprints"`
	Timeline     TimelineEstimate `gorm:"embedded;embeddedPrefix:timeline_" json:"timeline"`
	Status       string           `gorm:"size:50;default:draft;index" json:"status"`
	ChangeReason string           `gorm:"size:500" json:"change_reason,omitempty"`
	CreatedAt    time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	DeletedAt    gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (Plan) TableName() string { return "plans" }

// SprintList stores a plan's sprints as one JSON document.
type SprintList []Sprint

func (l *SprintList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		return nil
	default:
		return fmt.Errorf("cannot scan %T into SprintList", value)
	}
}

func (l SprintList) Value() (driver.Value, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

type Sprint struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SprintNum int    `json:"sprint_num"`
	Goal      string `json:"goal,omitempty"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	Tasks     []Task `json:"tasks"`
	Status    string `json:"status"` // planned, in-progress, completed
}

type Task struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	Status             string     `json:"status"` // todo, in-progress, done
	Assignee           string     `json:"assignee"`
	EstimatedHours     float64    `json:"estimated_hours,omitempty"`
	ActualHours        float64    `json:"actual_hours,omitempty"`
	DueDate            string     `json:"due_date,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	EpicID             string     `json:"epic_id,omitempty"`
	RequiredSkills     []string   `json:"required_skills,omitempty"`
	AcceptanceCriteria []string   `json:"acceptance_criteria,omitempty"`
	DependsOn          []string   `json:"depends_on,omitempty"`
}
