package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, actorID snowflake.ID, req CreateTaskRequest) (*Task, error)
	Update(ctx context.Context, taskID, actorID snowflake.ID, req UpdateTaskRequest) (*Task, error)
	Move(ctx context.Context, taskID, actorID, toListID snowflake.ID) (*Task, error)
	GetByID(ctx context.Context, taskID snowflake.ID) (*Task, error)
	ListByList(ctx context.Context, listID snowflake.ID) ([]Task, error)
	ListByProject(ctx context.Context, projectID snowflake.ID) ([]Task, error)

	AddSubtask(ctx context.Context, taskID, actorID snowflake.ID, title string) (*Subtask, error)
	UpdateSubtask(ctx context.Context, subtaskID, actorID snowflake.ID, req UpdateSubtaskRequest) (*Subtask, error)
	GetSubtaskByID(ctx context.Context, subtaskID snowflake.ID) (*Subtask, error)
	ListSubtasks(ctx context.Context, taskID snowflake.ID) ([]Subtask, error)
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id snowflake.ID) (*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	ListTasksByList(ctx context.Context, listID snowflake.ID) ([]Task, error)
	ListTasksByProject(ctx context.Context, projectID snowflake.ID) ([]Task, error)
	MaxTaskPosition(ctx context.Context, listID snowflake.ID) (int, error)
	ListBelongsToProject(ctx context.Context, listID, projectID snowflake.ID) (bool, error)

	CreateSubtask(ctx context.Context, subtask *Subtask) error
	GetSubtask(ctx context.Context, id snowflake.ID) (*Subtask, error)
	UpdateSubtask(ctx context.Context, subtask *Subtask) error
	ListSubtasksByTask(ctx context.Context, taskID snowflake.ID) ([]Subtask, error)
}

type CreateTaskRequest struct {
	ProjectID   snowflake.ID
	ListID      snowflake.ID
	Title       string
	Description string
	AssignedTo  *snowflake.ID
}

type UpdateTaskRequest struct {
	Title       *string
	Description *string
	AssignedTo  *snowflake.ID
	Unassign    bool
}

type UpdateSubtaskRequest struct {
	Title *string
	Done  *bool
}

var (
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrInvalidList     = errors.New("invalid_list")
	ErrTaskNotFound    = errors.New("task_not_found")
	ErrSubtaskNotFound = errors.New("subtask_not_found")
)
