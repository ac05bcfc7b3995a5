// Package domain contains persistence models for the board service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Board is a project-scoped kanban surface.
type Board struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ProjectID snowflake.ID `gorm:"not null;index" json:"project_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Board) TableName() string { return "boards" }

// List is an ordered column on a board. Position is a zero-based sort key.
type List struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	BoardID  snowflake.ID `gorm:"not null;index" json:"board_id"`
	Name     string       `gorm:"type:text;not null" json:"name"`
	Position int          `gorm:"not null" json:"position"`
}

// TableName sets the database table name.
func (List) TableName() string { return "board_lists" }

// DefaultListNames seeds every new board, in this order.
var DefaultListNames = []string{"To Do", "In Progress", "Done"}
