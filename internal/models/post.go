// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Post represents a feed post.
//
// AuthorName is captured from the author at creation time and intentionally
// not resynced when the author later renames their profile.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	AuthorName string    `gorm:"not null" json:"name"`
	Text       string    `gorm:"type:text" json:"text"`
	ImageID    string    `json:"image,omitempty"` // blob id, empty when unset
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// LikeUserIDs is computed at query time from the likes table. It is a
	// set: each liking user appears exactly once.
	LikeUserIDs []uint `gorm:"-" json:"likes"`

	// Comments are ordered newest first.
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments"`
}

// PostProjection is the trimmed post view returned alongside comment
// deletion confirmations.
type PostProjection struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	ImageID     string    `json:"image,omitempty"`
	LikeUserIDs []uint    `json:"likes"`
	Comments    []Comment `json:"comments"`
}

// Projection returns the trimmed view of the post.
func (p *Post) Projection() PostProjection {
	return PostProjection{
		ID:          p.ID,
		UserID:      p.UserID,
		ImageID:     p.ImageID,
		LikeUserIDs: p.LikeUserIDs,
		Comments:    p.Comments,
	}
}
