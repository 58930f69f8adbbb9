package models

import (
	"time"
)

// BlobObject is the metadata record for one stored binary object. Content
// lives in BlobChunk rows; the object row is written last inside the same
// transaction, so an id never exists without its full content.
type BlobObject struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ContentType string    `gorm:"not null" json:"content_type"`
	Size        int64     `gorm:"not null" json:"size"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (BlobObject) TableName() string {
	return "blob_objects"
}

// BlobChunk holds one ordered slice of a blob's bytes.
type BlobChunk struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	BlobID string `gorm:"size:36;not null;uniqueIndex:idx_blob_chunk_seq;index" json:"-"`
	Seq    int    `gorm:"not null;uniqueIndex:idx_blob_chunk_seq" json:"-"`
	Data   []byte `gorm:"not null" json:"-"`
}

// TableName specifies the table name for GORM
func (BlobChunk) TableName() string {
	return "blob_chunks"
}
