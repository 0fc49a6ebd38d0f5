package models

import (
	"time"
)

// PostClap is one reader's accumulated claps on a post. The row is created on
// the first clap, incremented up to the per-user cap, and removed entirely
// when the reader undoes their claps. Post.ClapCount must always equal the
// sum of Count over a post's rows.
type PostClap struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_user_clap" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_user_clap" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Count     int       `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
