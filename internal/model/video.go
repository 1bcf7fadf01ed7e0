package model

import (
	"time"
)

// Video is the persisted metadata for one uploaded video.
// The binary itself lives at the media CDN under PublicID; the record is
// read-only after creation except for the encoding fields, which the CDN's
// processing notification may revise.
type Video struct {
	ID             string    `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description"`
	PublicID       string    `db:"public_id" json:"publicId"`
	OriginalSize   string    `db:"original_size" json:"originalSize"`     // bytes, decimal string
	CompressedSize string    `db:"compressed_size" json:"compressedSize"` // bytes, decimal string
	Duration       float64   `db:"duration" json:"duration"`              // seconds
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
