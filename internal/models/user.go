package models

import (
	"time"

	"gorm.io/gorm"
)

// Account statuses
const (
	AccountStatusActive    = "ACTIVE"
	AccountStatusFrozen    = "FROZEN"
	AccountStatusSuspended = "SUSPENDED"
)

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	FullName            string  `gorm:"not null"`
	Email               string  `gorm:"uniqueIndex;not null"`
	Phone               string  `gorm:"uniqueIndex;not null"`
	Password            string  `gorm:"not null"`
	UpiID               string  `gorm:"uniqueIndex"` // e.g. 9000000001@upi
	UpiPin              *string // bcrypt hash, nil until the user sets a PIN
	Role                string  `gorm:"default:'user'"`
	Status              string  `gorm:"default:'ACTIVE'"`
	IsVerified          bool    `gorm:"default:false"`
	FailedLoginAttempts int     `gorm:"default:0"`
	TokenVersion        int     `gorm:"default:1"`
	LastLoginAt         time.Time
	LastLoginIP         string
}
