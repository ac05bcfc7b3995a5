package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/taskhive/taskhive/internal/task/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) domain.Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) CreateTask(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *repository) GetTask(ctx context.Context, id snowflake.ID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *repository) UpdateTask(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *repository) ListTasksByList(ctx context.Context, listID snowflake.ID) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("position asc, id asc").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *repository) ListTasksByProject(ctx context.Context, projectID snowflake.ID) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at asc, id asc").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *repository) MaxTaskPosition(ctx context.Context, listID snowflake.ID) (int, error) {
	var row struct {
		Max *int `gorm:"column:max_position"`
	}
	err := r.db.WithContext(ctx).Raw(
		`SELECT MAX(position) AS max_position FROM tasks WHERE list_id = ?`,
		listID,
	).Scan(&row).Error
	if err != nil {
		return 0, err
	}
	if row.Max == nil {
		return -1, nil
	}
	return *row.Max, nil
}

func (r *repository) ListBelongsToProject(ctx context.Context, listID, projectID snowflake.ID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("board_lists").
		Joins("JOIN boards ON boards.id = board_lists.board_id").
		Where("board_lists.id = ? AND boards.project_id = ?", listID, projectID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CreateSubtask(ctx context.Context, subtask *domain.Subtask) error {
	return r.db.WithContext(ctx).Create(subtask).Error
}

func (r *repository) GetSubtask(ctx context.Context, id snowflake.ID) (*domain.Subtask, error) {
	var subtask domain.Subtask
	err := r.db.WithContext(ctx).First(&subtask, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSubtaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (r *repository) UpdateSubtask(ctx context.Context, subtask *domain.Subtask) error {
	return r.db.WithContext(ctx).Save(subtask).Error
}

func (r *repository) ListSubtasksByTask(ctx context.Context, taskID snowflake.ID) ([]domain.Subtask, error) {
	var subtasks []domain.Subtask
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at asc, id asc").
		Find(&subtasks).Error
	if err != nil {
		return nil, err
	}
	return subtasks, nil
}
