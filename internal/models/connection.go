package models

import (
	"time"
)

// Connection is one half of a symmetric user connection: the edge from
// UserID to ConnectionID. connect(A,B) writes the (A,B) and (B,A) rows as
// two independent inserts with no cross-row transaction; a failure between
// the two leaves a transient one-directional edge that a retry repairs.
type Connection struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_connection_pair;index" json:"user_id"`
	ConnectionID uint      `gorm:"not null;uniqueIndex:idx_connection_pair" json:"connection_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Connection) TableName() string {
	return "connections"
}
