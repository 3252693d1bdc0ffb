package models

import "time"

// SessionEvent records session state transitions for auditing: logins,
// logouts, handshake outcomes and supersessions.
type SessionEvent struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	QueueManager string `gorm:"size:64;index"`
	State        string `gorm:"size:24"`
	Detail       string `gorm:"type:text"`
	CreatedAt    time.Time
}
