package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Communication statuses. A row is append-only after creation; only the
// status may progress (sent → delivered → opened → replied).
const (
	CommStatusSent      = "sent"
	CommStatusDelivered = "delivered"
	CommStatusOpened    = "opened"
	CommStatusReplied   = "replied"
	CommStatusFailed    = "failed"
)

// Communication types
const (
	CommTypePaymentReminder = "payment_reminder"
	CommTypeChangeOrder     = "change_order"
	CommTypeContractShare   = "contract_share"
	CommTypeGeneral         = "general"
)

// Communication is the log of an email sent to a client.
type Communication struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"user_id"`
	ContractID      *uint      `gorm:"index" json:"contract_id,omitempty"`
	ChangeRequestID *uint      `gorm:"index" json:"change_request_id,omitempty"`
	Type            string     `gorm:"size:50;not null" json:"type"`
	To              string     `gorm:"size:255;not null" json:"to"`
	Subject         string     `gorm:"size:500;not null" json:"subject"`
	Body            string     `gorm:"type:text;not null" json:"body"`
	Attachments     StringList `gorm:"type:text" json:"attachments,omitempty"`
	Status          string     `gorm:"size:50;default:sent;index" json:"status"`
	EmailID         string     `gorm:"size:100" json:"email_id,omitempty"`
	SentAt          time.Time  `gorm:"index" json:"sent_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Communication) TableName() string { return "communications" }

// StringList stores a string slice as a JSON array column.
type StringList []string

func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		return nil
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
}

func (l StringList) Value() (driver.Value, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
