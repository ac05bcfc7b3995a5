// Package domain contains persistence models for the project service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ProjectRole is the closed set of project membership roles.
type ProjectRole string

const (
	ProjectRoleManager ProjectRole = "MANAGER"
	ProjectRoleMember  ProjectRole = "MEMBER"
)

// Valid reports whether r is one of the known project roles.
func (r ProjectRole) Valid() bool {
	switch r {
	case ProjectRoleManager, ProjectRoleMember:
		return true
	default:
		return false
	}
}

// Project is a team-scoped container for boards and tasks.
type Project struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	TeamID      snowflake.ID `gorm:"not null;index" json:"team_id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	CreatedBy   snowflake.ID `gorm:"column:created_by;not null" json:"created_by"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Project) TableName() string { return "projects" }

// ProjectMember links a user to a project with a project-level role.
type ProjectMember struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ProjectID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_project_user,priority:1" json:"project_id"`
	UserID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_project_user,priority:2" json:"user_id"`
	Role      ProjectRole  `gorm:"type:text;not null" json:"role"`
	AddedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"added_at"`
}

// TableName sets the database table name.
func (ProjectMember) TableName() string { return "project_members" }
