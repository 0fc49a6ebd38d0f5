package models

import (
	"time"
)

// MagicLink is a single-use passwordless login token delivered by email.
// Consuming a token deletes the row, so a link can never log in twice.
type MagicLink struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"uniqueIndex;size:36;not null" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
