package models

import "time"

// BudgetCommit is one entry of the budget history.
type BudgetCommit struct {
	Hash       string    `json:"hash" gorm:"primaryKey"`
	Timestamp  time.Time `json:"timestamp" gorm:"index;index:idx_commits_author_time,priority:2"`
	Message    string    `json:"message"`
	Author     string    `json:"author" gorm:"index:idx_commits_author_time,priority:1"`
	ParentHash string    `json:"parentHash"`
	Device     string    `json:"deviceFingerprint"`
}
