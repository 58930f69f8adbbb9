// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Comment represents a comment on a post. Comments are keyed rows rather
// than positions in an array, so removal always targets a comment identity
// and two concurrent deletions of different comments never race.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	UserID     uint      `gorm:"not null" json:"user_id"`
	AuthorName string    `gorm:"not null" json:"name"`
	Text       string    `gorm:"not null" json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}
