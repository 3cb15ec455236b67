package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LevyType is the fund a levy is raised for
type LevyType string

const (
	LevyTypeAdminFund   LevyType = "admin_fund"
	LevyTypeSinkingFund LevyType = "sinking_fund"
	LevyTypeSpecial     LevyType = "special"
)

// Valid reports whether t is a known levy type
func (t LevyType) Valid() bool {
	switch t {
	case LevyTypeAdminFund, LevyTypeSinkingFund, LevyTypeSpecial:
		return true
	}
	return false
}

// PaymentStatus tracks whether a levy has been settled
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusOverdue   PaymentStatus = "overdue"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Valid reports whether s is a known status
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusOverdue, PaymentStatusCancelled:
		return true
	}
	return false
}

// LevyPayment is a levy charged to a lot and its settlement
type LevyPayment struct {
	BaseModel
	PropertyID  uint            `gorm:"index;not null" json:"property_id"`
	PayerID     *uint           `gorm:"index" json:"payer_id,omitempty"`
	LevyType    LevyType        `gorm:"type:varchar(20);not null" json:"levy_type"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	DueDate     time.Time       `gorm:"index;not null" json:"due_date"`
	Status      PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	Reference   string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"reference"`
	Description string          `gorm:"type:varchar(255)" json:"description"`

	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Payer    *User     `gorm:"foreignKey:PayerID" json:"payer,omitempty"`
}
