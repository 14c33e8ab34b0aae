package models

import "time"

// RefreshToken is one link of a rotating refresh chain. Only the SHA-256 of
// the secret is stored; the secret itself lives in the sealed cookie.
type RefreshToken struct {
	ID         string    `gorm:"primaryKey"`
	UserID     uint      `gorm:"not null;index"`
	SecretHash string    `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"not null"`
	RevokedAt  *time.Time
	ReplacedBy string
	CreatedAt  time.Time `gorm:"not null"`
}

func (token RefreshToken) Usable(now time.Time) bool {
	return token.RevokedAt == nil && now.Before(token.ExpiresAt)
}
