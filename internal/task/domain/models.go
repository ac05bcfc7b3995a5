// Package domain contains persistence models for the task service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Task lives on a board list within a project. AssignedTo is nil while the
// task is unassigned. Position is a zero-based sort key within its list.
type Task struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	ProjectID   snowflake.ID  `gorm:"not null;index" json:"project_id"`
	ListID      snowflake.ID  `gorm:"not null;index" json:"list_id"`
	Title       string        `gorm:"type:text;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	AssignedTo  *snowflake.ID `gorm:"column:assigned_to;index" json:"assigned_to"`
	Position    int           `gorm:"not null" json:"position"`
	CreatedBy   snowflake.ID  `gorm:"column:created_by;not null" json:"created_by"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Task) TableName() string { return "tasks" }

// Subtask is a checklist line under a task.
type Subtask struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	TaskID    snowflake.ID `gorm:"not null;index" json:"task_id"`
	Title     string       `gorm:"type:text;not null" json:"title"`
	Done      bool         `gorm:"not null;default:false" json:"done"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Subtask) TableName() string { return "subtasks" }
