package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SavingsGoal struct {
	ID            string          `json:"id" gorm:"primaryKey"`
	Name          string          `json:"name" gorm:"index"`
	Category      string          `json:"category" gorm:"index;index:idx_savings_category_completed,priority:1"`
	Priority      string          `json:"priority" gorm:"index;index:idx_savings_priority_target,priority:1"`
	TargetAmount  decimal.Decimal `json:"targetAmount" gorm:"type:DECIMAL(20,8)"`
	CurrentAmount decimal.Decimal `json:"currentAmount" gorm:"type:DECIMAL(20,8)"`
	TargetDate    *time.Time      `json:"targetDate" gorm:"index;index:idx_savings_priority_target,priority:2;index:idx_savings_target_completed,priority:1"`
	IsPaused      bool            `json:"isPaused" gorm:"index:idx_savings_completed_paused,priority:2"`
	IsCompleted   bool            `json:"isCompleted" gorm:"index;index:idx_savings_category_completed,priority:2;index:idx_savings_target_completed,priority:2;index:idx_savings_completed_paused,priority:1"`
	Timestamps
}

func (g *SavingsGoal) BeforeSave(_ *gorm.DB) error {
	g.Name = strings.TrimSpace(g.Name)
	g.Category = strings.TrimSpace(g.Category)

	return nil
}

// BeforeCreate assigns an ID when none is set.
func (g *SavingsGoal) BeforeCreate(_ *gorm.DB) error {
	if g.ID == "" {
		g.ID = NewID()
	}
	return nil
}
