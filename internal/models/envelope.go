package models

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Envelope is a named budget bucket holding a running balance.
type Envelope struct {
	ID             string          `json:"id" gorm:"primaryKey" example:"0190c1d4-5e92-7268-b114-297faad6cdce"`
	Name           string          `json:"name" gorm:"index;index:idx_envelopes_category_name,priority:2" example:"Groceries"`
	Category       string          `json:"category" gorm:"index;index:idx_envelopes_category_archived,priority:1;index:idx_envelopes_category_name,priority:1" example:"Food"`
	Archived       bool            `json:"archived" gorm:"index;index:idx_envelopes_category_archived,priority:2"`
	CurrentBalance decimal.Decimal `json:"currentBalance" gorm:"type:DECIMAL(20,8)" example:"120.50"`
	Timestamps
}

func (e *Envelope) BeforeSave(_ *gorm.DB) error {
	e.ID = strings.TrimSpace(e.ID)
	e.Name = strings.TrimSpace(e.Name)
	e.Category = strings.TrimSpace(e.Category)

	return nil
}

func (e *Envelope) AfterFind(_ *gorm.DB) error {
	e.Timestamps.UTC()
	return nil
}

// BeforeCreate assigns an ID when none is set.
func (e *Envelope) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = NewID()
	}
	return nil
}
