package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account holder (freelancer or company member).
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string         `gorm:"size:255" json:"-"` // bcrypt hash
	Name      string         `gorm:"size:200" json:"name"`
	Phone     string         `gorm:"size:50" json:"phone,omitempty"`
	Website   string         `gorm:"size:255" json:"website,omitempty"`
	Timezone  string         `gorm:"size:100;default:UTC" json:"timezone"`
	Currency  string         `gorm:"size:10;default:USD" json:"currency"`
	CompanyID *uint          `gorm:"index" json:"company_id,omitempty"`
	TeamID    *uint          `gorm:"index" json:"team_id,omitempty"`
	Role      string         `gorm:"size:50;default:manager" json:"role"` // admin, manager, employee
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }
