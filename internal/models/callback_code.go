package models

import "time"

// CallbackCode records a sign-in link so that it can be exchanged only once.
// The ID is the jti of the signed code.
type CallbackCode struct {
	ID        string    `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time `gorm:"not null"`
}
