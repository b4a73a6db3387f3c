package models

import (
	"time"

	"gorm.io/gorm"
)

// Company license types
const (
	LicenseTrial      = "trial"
	LicenseBasic      = "basic"
	LicensePremium    = "premium"
	LicenseEnterprise = "enterprise"
)

// Company is the multi-tenancy root: Company 1:N Team 1:N Person.
type Company struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:200;not null" json:"name"`
	Industry      string         `gorm:"size:100" json:"industry"`
	LicenseType   string         `gorm:"size:50;default:trial" json:"license_type"`
	LicenseExpiry time.Time      `json:"license_expiry"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Company) TableName() string { return "companies" }

type Team struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CompanyID   uint           `gorm:"index;not null" json:"company_id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	ManagerID   uint           `json:"manager_id"`
	Description string         `gorm:"size:500" json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Team) TableName() string { return "teams" }

// Person roles
const (
	PersonRoleManager   = "manager"
	PersonRoleDeveloper = "developer"
	PersonRoleDesigner  = "designer"
	PersonRoleQA        = "qa"
	PersonRoleDevops    = "devops"
)

// Person is a team member. CurrentWorkload is a committed-capacity percentage
// (0-100) maintained by managers; it is an input to capacity math, not derived
// from assignments automatically.
type Person struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CompanyID       uint           `gorm:"index;not null" json:"company_id"`
	TeamID          uint           `gorm:"index;not null" json:"team_id"`
	Name            string         `gorm:"size:200;not null" json:"name"`
	Email           string         `gorm:"size:255" json:"email"`
	Role            string         `gorm:"size:50;default:developer" json:"role"`
	HoursPerWeek    float64        `gorm:"default:40" json:"hours_per_week"`
	CurrentWorkload float64        `gorm:"default:0" json:"current_workload"` // 0-100
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Person) TableName() string { return "people" }

// Skill categories
const (
	SkillCategoryFrontend = "frontend"
	SkillCategoryBackend  = "backend"
	SkillCategoryMobile   = "mobile"
	SkillCategoryDevops   = "devops"
	SkillCategoryDesign   = "design"
)

type Skill struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100;not null" json:"key"`
	Category  string    `gorm:"size:50;index" json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func (Skill) TableName() string { return "skills" }

// PersonSkill links a person to a skill with a 1-5 proficiency level.
type PersonSkill struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PersonID uint   `gorm:"index;not null" json:"person_id"`
	SkillID  uint   `gorm:"index;not null" json:"skill_id"`
	SkillKey string `gorm:"size:100" json:"skill_key"` // denormalized for quick lookups
	Level    int    `gorm:"not null" json:"level"`     // 1=beginner, 5=expert
}

func (PersonSkill) TableName() string { return "person_skills" }

// Project statuses
const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusActive    = "active"
	ProjectStatusOnHold    = "on-hold"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

// Project is the execution-side counterpart of a contract.
type Project struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ContractID uint           `gorm:"index;not null" json:"contract_id"`
	CompanyID  uint           `gorm:"index" json:"company_id"`
	Name       string         `gorm:"size:200;not null" json:"name"`
	Status     string         `gorm:"size:50;default:planning;index" json:"status"`
	StartDate  *time.Time     `json:"start_date,omitempty"`
	EndDate    *time.Time     `json:"end_date,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }

// Assignment statuses
const (
	AssignmentStatusAssigned   = "assigned"
	AssignmentStatusInProgress = "in-progress"
	AssignmentStatusCompleted  = "completed"
)

// Assignment commits a person to a plan task for a number of planned hours.
type Assignment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TaskID       string    `gorm:"size:64;index;not null" json:"task_id"`
	SprintID     string    `gorm:"size:64;index" json:"sprint_id"`
	PersonID     uint      `gorm:"index;not null" json:"person_id"`
	PersonName   string    `gorm:"size:200" json:"person_name"` // denormalized
	PlannedHours float64   `json:"planned_hours"`
	ActualHours  float64   `json:"actual_hours,omitempty"`
	Status       string    `gorm:"size:50;default:assigned" json:"status"`
	AssignedAt   time.Time `json:"assigned_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Assignment) TableName() string { return "assignments" }
