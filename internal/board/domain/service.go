package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, projectID snowflake.ID, name string) (*Board, error)
	Rename(ctx context.Context, boardID snowflake.ID, name string) (*Board, error)
	GetByID(ctx context.Context, boardID snowflake.ID) (*Board, error)
	ListByProject(ctx context.Context, projectID snowflake.ID) ([]Board, error)

	AddList(ctx context.Context, boardID snowflake.ID, name string) (*List, error)
	Lists(ctx context.Context, boardID snowflake.ID) ([]List, error)
	GetList(ctx context.Context, listID snowflake.ID) (*List, error)
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateBoard(ctx context.Context, board *Board) error
	GetBoard(ctx context.Context, id snowflake.ID) (*Board, error)
	UpdateBoard(ctx context.Context, board *Board) error
	ListBoardsByProject(ctx context.Context, projectID snowflake.ID) ([]Board, error)

	CreateList(ctx context.Context, list *List) error
	GetList(ctx context.Context, id snowflake.ID) (*List, error)
	ListsByBoard(ctx context.Context, boardID snowflake.ID) ([]List, error)
	MaxListPosition(ctx context.Context, boardID snowflake.ID) (int, error)
}

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrBoardNotFound = errors.New("board_not_found")
	ErrListNotFound  = errors.New("list_not_found")
)
