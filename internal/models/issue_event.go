package models

import "time"

// IssueEvent is one row of the append-only issue history. The in-memory
// ledger remains the source of truth for the read path; this table exists so
// operators can audit what was detected and when, across drains.
type IssueEvent struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	ObjectType    string `gorm:"size:16;index"`
	ObjectName    string `gorm:"size:64;index"`
	IssueCode     string `gorm:"size:32;index"`
	Message       string `gorm:"type:text"`
	ObjectDetails string `gorm:"type:text"`
	DetectedAt    time.Time
	CreatedAt     time.Time
}
