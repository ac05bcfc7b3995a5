// Package domain contains persistence models for the comment service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Comment is an authored note on a task.
type Comment struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	TaskID    snowflake.ID `gorm:"not null;index" json:"task_id"`
	AuthorID  snowflake.ID `gorm:"column:author_id;not null;index" json:"author_id"`
	Body      string       `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Comment) TableName() string { return "task_comments" }
