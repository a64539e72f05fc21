// Package models contains domain entities and business models for the script sharing service
package models

import (
	"time"

	"github.com/lib/pq"
)

// Script represents a shared snippet of source code reachable by its permalink
// Permalink is the url-safe unique identifier assigned at submission time
// Tags keeps the submitted tag names in order; the Tag table holds usage counts
type Script struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Permalink string         `gorm:"size:128;not null;uniqueIndex:uk_scripts_permalink;index:idx_scripts_permalink" json:"permalink"`
	Author    string         `gorm:"size:255;not null" json:"author"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Source    string         `gorm:"type:text;not null" json:"source"`
	Tags      pq.StringArray `gorm:"type:text[]" json:"tags"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_scripts_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for Script
func (Script) TableName() string { return "scripts" }

// ScriptFilter provides filter fields for repository queries
type ScriptFilter struct {
	ID            *uint
	Permalink     *string
	Author        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
