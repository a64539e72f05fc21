package models

import "time"

// Comment is owned by its parent Script and is removed when the script is
// deleted; there is no standalone comment lifecycle
type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ScriptID uint   `gorm:"not null;index:idx_comments_script_id" json:"script_id"`
	Author   string `gorm:"size:255;not null" json:"author"`
	Body     string `gorm:"type:text;not null" json:"body"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_comments_created_at" json:"created_at"`
}

func (Comment) TableName() string { return "comments" }

// CommentFilter provides filter fields for repository queries
type CommentFilter struct {
	ID            *uint
	ScriptID      *uint
	Author        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
