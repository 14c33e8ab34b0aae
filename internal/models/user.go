package models

import "time"

// User is an account holder. Email is stored normalised, so lookups compare
// it directly; the profile lives in its own table and may not exist yet.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time `gorm:"not null"`
}
