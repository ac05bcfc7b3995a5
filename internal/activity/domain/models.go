// Package domain contains persistence models for the activity log.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Entry is one immutable row of the audit trail. The actor reference is
// nullable so entries survive deletion of the acting user, and the target is
// kept as decoupled type+id strings so entries survive deletion of the target.
type Entry struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ActorID    *snowflake.ID     `gorm:"column:actor_id;index" json:"actor_id"`
	Action     string            `gorm:"type:text;not null;index" json:"action"`
	TargetType string            `gorm:"type:text;not null" json:"target_type"`
	TargetID   string            `gorm:"type:text;not null" json:"target_id"`
	Metadata   datatypes.JSONMap `gorm:"not null;default:'{}'" json:"metadata"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// TableName sets the database table name.
func (Entry) TableName() string { return "activity_logs" }

// Target is the tagged reference an Entry records. Zero value means no target.
type Target struct {
	Type string
	ID   string
}

// TargetFor builds a Target from an entity type name and its snowflake ID.
func TargetFor(entityType string, id snowflake.ID) Target {
	return Target{Type: entityType, ID: id.String()}
}

const (
	TargetTeam    = "team"
	TargetProject = "project"
	TargetTask    = "task"
	TargetSubtask = "subtask"
	TargetComment = "comment"
)

// MetadataProjectID is the metadata key the activity feed filters on.
// The key name is part of the external read contract.
const MetadataProjectID = "project_id"
