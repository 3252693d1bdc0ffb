package models

import "time"

// ListenerLog captures companion listener process output for debugging.
type ListenerLog struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	SessionID string `gorm:"size:64;index"`
	Direction string `gorm:"size:4"` // "out" or "err"
	Content   string `gorm:"type:text"`
	CreatedAt time.Time
}
