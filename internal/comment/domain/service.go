package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, taskID, authorID snowflake.ID, body string) (*Comment, error)
	Update(ctx context.Context, commentID, actorID snowflake.ID, body string) (*Comment, error)
	GetByID(ctx context.Context, commentID snowflake.ID) (*Comment, error)
	ListByTask(ctx context.Context, taskID snowflake.ID) ([]Comment, error)
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, comment *Comment) error
	Get(ctx context.Context, id snowflake.ID) (*Comment, error)
	Update(ctx context.Context, comment *Comment) error
	ListByTask(ctx context.Context, taskID snowflake.ID) ([]Comment, error)
}

var (
	ErrEmptyBody       = errors.New("empty_body")
	ErrCommentNotFound = errors.New("comment_not_found")
	ErrNotAuthor       = errors.New("not_author")
)
