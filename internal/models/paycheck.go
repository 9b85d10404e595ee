package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaycheckMode string

const (
	ModeAllocate PaycheckMode = "allocate"
	ModeLeftover PaycheckMode = "leftover"
)

// EnvelopeAllocation is the part of a paycheck or distribution that goes to one envelope.
type EnvelopeAllocation struct {
	EnvelopeID string          `json:"envelopeId"`
	Amount     decimal.Decimal `json:"amount"`
}

// PaycheckHistory records a processed paycheck.
//
// The before and after values are the ledger used to reverse the paycheck
// when it is deleted. Records are never updated.
type PaycheckHistory struct {
	ID                   string               `json:"id" gorm:"primaryKey"`
	Date                 time.Time            `json:"date" gorm:"index;index:idx_paychecks_date_amount,priority:1;index:idx_paychecks_source_date,priority:2"`
	Amount               decimal.Decimal      `json:"amount" gorm:"type:DECIMAL(20,8);index:idx_paychecks_date_amount,priority:2"`
	Source               string               `json:"source" gorm:"index;index:idx_paychecks_source_date,priority:1"` // Name of the payer
	Mode                 PaycheckMode         `json:"mode"`
	UnassignedCashBefore decimal.Decimal      `json:"unassignedCashBefore" gorm:"type:DECIMAL(20,8)"`
	UnassignedCashAfter  decimal.Decimal      `json:"unassignedCashAfter" gorm:"type:DECIMAL(20,8)"`
	ActualBalanceBefore  decimal.Decimal      `json:"actualBalanceBefore" gorm:"type:DECIMAL(20,8)"`
	ActualBalanceAfter   decimal.Decimal      `json:"actualBalanceAfter" gorm:"type:DECIMAL(20,8)"`
	EnvelopeAllocations  []EnvelopeAllocation `json:"envelopeAllocations" gorm:"serializer:json"`
	Notes                string               `json:"notes"`
	Timestamps
}

// TableName keeps the collection name of the local database.
func (PaycheckHistory) TableName() string {
	return "paycheck_history"
}

func (p *PaycheckHistory) BeforeSave(_ *gorm.DB) error {
	if p.Date.IsZero() {
		p.Date = time.Now().In(time.UTC)
	} else {
		p.Date = p.Date.In(time.UTC)
	}

	return nil
}

func (p *PaycheckHistory) AfterFind(_ *gorm.DB) error {
	p.Timestamps.UTC()
	p.Date = p.Date.In(time.UTC)
	return nil
}

// BeforeCreate assigns an ID when none is set.
func (p *PaycheckHistory) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}
