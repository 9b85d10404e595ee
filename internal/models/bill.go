package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Bill struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"index"`
	DueDate     time.Time       `json:"dueDate" gorm:"index;index:idx_bills_due_paid,priority:1;index:idx_bills_paid_due,priority:2"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
	Category    string          `json:"category" gorm:"index;index:idx_bills_category_paid,priority:1"`
	IsPaid      bool            `json:"isPaid" gorm:"index;index:idx_bills_due_paid,priority:2;index:idx_bills_category_paid,priority:2;index:idx_bills_paid_due,priority:1"`
	IsRecurring bool            `json:"isRecurring" gorm:"index;index:idx_bills_recurring_frequency,priority:1"`
	Frequency   string          `json:"frequency" gorm:"index:idx_bills_recurring_frequency,priority:2"`
	EnvelopeID  string          `json:"envelopeId" gorm:"index"`
	Timestamps
}

func (b *Bill) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	return nil
}
