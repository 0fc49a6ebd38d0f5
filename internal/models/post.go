package models

import (
	"time"
)

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Pid       string    `gorm:"uniqueIndex;size:8;not null" json:"pid"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	TagID     uint      `gorm:"not null;index;default:1" json:"tag_id"`
	Tag       Tag       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"tag"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"` // raw markdown
	ClapCount int       `gorm:"default:0" json:"clap_count"`
	Views     int       `gorm:"default:0" json:"views"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Filled at query time, not stored
	CommentCount int `gorm:"-" json:"comment_count"`
}
