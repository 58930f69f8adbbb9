// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a member of the Linkup network.
//
// Connection membership is symmetric: if A holds an edge to B, B holds an
// edge to A. The two edges live in separate rows of the connections table and
// are written independently (see Connection).
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"` // blob id, empty when unset
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ConnectionIDs is computed at query time from the connections table.
	ConnectionIDs []uint `gorm:"-" json:"connections"`

	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// UserSuggestion is a user candidate annotated with the number of
// connections shared with the requesting user.
type UserSuggestion struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Bio           string `json:"bio"`
	Avatar        string `json:"avatar"`
	ConnectionIDs []uint `json:"connections"`
	MutualCount   int    `json:"mutual_count"`
}
