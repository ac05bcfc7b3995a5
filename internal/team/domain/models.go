// Package domain contains persistence models for the team service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is the closed set of membership roles.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleViewer Role = "VIEWER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember, RoleViewer:
		return true
	default:
		return false
	}
}

// InviteStatus state machine: PENDING -> ACCEPTED | REVOKED, both terminal.
type InviteStatus string

const (
	InvitePending  InviteStatus = "PENDING"
	InviteAccepted InviteStatus = "ACCEPTED"
	InviteRevoked  InviteStatus = "REVOKED"
)

// Team is a tenant boundary grouping users and their shared projects.
type Team struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Slug        string       `gorm:"type:text;not null" json:"slug"`
	Description string       `gorm:"type:text" json:"description"`
	CreatedBy   snowflake.ID `gorm:"column:created_by;not null;index" json:"created_by"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Team) TableName() string { return "teams" }

// Membership is the role-bearing link between a user and a team.
type Membership struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	TeamID   snowflake.ID `gorm:"not null;index;uniqueIndex:ux_team_user,priority:1" json:"team_id"`
	UserID   snowflake.ID `gorm:"not null;index;uniqueIndex:ux_team_user,priority:2" json:"user_id"`
	Role     Role         `gorm:"type:text;not null" json:"role"`
	JoinedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"joined_at"`
}

// TableName sets the database table name.
func (Membership) TableName() string { return "team_members" }

// Invite tracks a pending offer of team membership sent to an email address.
// Invites are never deleted; accepting or revoking is a terminal transition.
// The partial unique index keeps at most one PENDING row per (team, email)
// while allowing settled invites from earlier cycles to accumulate.
type Invite struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Token       string       `gorm:"type:text;not null;uniqueIndex:ux_team_invites_token" json:"token"`
	TeamID      snowflake.ID `gorm:"not null;index:ix_team_email,priority:1;uniqueIndex:ux_team_invites_pending,priority:1,where:status = 'PENDING'" json:"team_id"`
	Email       string       `gorm:"type:text;not null;index:ix_team_email,priority:2;uniqueIndex:ux_team_invites_pending,priority:2,where:status = 'PENDING'" json:"email"`
	Role        Role         `gorm:"type:text;not null" json:"role"`
	InvitedBy   snowflake.ID `gorm:"column:invited_by;not null;index" json:"invited_by"`
	Status      InviteStatus `gorm:"type:text;not null" json:"status"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	RespondedAt *time.Time   `gorm:"column:responded_at" json:"responded_at"`
}

// TableName sets the database table name.
func (Invite) TableName() string { return "team_invites" }
