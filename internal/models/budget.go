package models

import (
	"github.com/shopspring/decimal"
)

// MetadataID is the key of the singleton BudgetMetadata record.
const MetadataID = "metadata"

// BudgetMetadata holds the two top-level balances that do not live in envelopes
// or savings goals.
type BudgetMetadata struct {
	ID                    string          `json:"id" gorm:"primaryKey"`
	ActualBalance         decimal.Decimal `json:"actualBalance" gorm:"type:DECIMAL(20,8)"`
	UnassignedCash        decimal.Decimal `json:"unassignedCash" gorm:"type:DECIMAL(20,8)"`
	IsActualBalanceManual bool            `json:"isActualBalanceManual"`
	Version               int             `json:"version" gorm:"index"`
	Timestamps
}

// TableName keeps the collection name of the local database.
func (BudgetMetadata) TableName() string {
	return "budget"
}
