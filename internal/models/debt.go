package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Debt struct {
	ID             string          `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name"`
	Creditor       string          `json:"creditor"`
	Type           string          `json:"type"`
	Status         string          `json:"status" gorm:"index"`
	CurrentBalance decimal.Decimal `json:"currentBalance" gorm:"type:DECIMAL(20,8)"`
	MinimumPayment decimal.Decimal `json:"minimumPayment" gorm:"type:DECIMAL(20,8)"`
	Timestamps
}

func (d *Debt) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = NewID()
	}
	return nil
}
