package models

import "time"

// Tag is a denormalized usage counter keyed by tag name
// Table: tags
// Unique by name; Count is incremented once per submission referencing it
// Timestamps default to UTC at DB level
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:255;not null;uniqueIndex:uk_tags_name;index:idx_tags_name" json:"name"`
	Count int64  `gorm:"not null;default:0" json:"count"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_tags_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Tag) TableName() string { return "tags" }

// TagFilter represents filter criteria for tag queries
type TagFilter struct {
	ID            *uint
	Name          *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
