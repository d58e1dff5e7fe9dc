package models

import "time"

// AuditLog records security-relevant events. Written by the audit sink in
// its own transaction so entries survive a money-movement rollback.
type AuditLog struct {
	ID         uint   `gorm:"primarykey"`
	UserID     uint   `gorm:"index"`
	Action     string `gorm:"not null;size:50"`
	Details    string `gorm:"size:500"`
	EntityType string `gorm:"size:50"`
	EntityID   *uint
	IPAddress  string `gorm:"size:45"`
	Success    bool
	CreatedAt  time.Time `gorm:"index"`
}
