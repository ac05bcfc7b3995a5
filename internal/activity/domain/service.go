package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Service appends and queries activity log entries.
//
// Record runs against the transaction handle it is given so the entry commits
// or rolls back together with the write that triggered it. Passing the base
// connection is allowed for callers without a surrounding transaction.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, actorID *snowflake.ID, action string, target Target, metadata map[string]any) (*Entry, error)
	ListByProject(ctx context.Context, projectID snowflake.ID, limit int) ([]Entry, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *Entry) error
	ListByProjectID(ctx context.Context, db *gorm.DB, projectID string, limit int) ([]Entry, error)
}

var (
	ErrInvalidAction  = errors.New("invalid_action")
	ErrInvalidProject = errors.New("invalid_project")
)
