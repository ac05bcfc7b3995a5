package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/taskhive/taskhive/internal/activity/domain"
	"github.com/taskhive/taskhive/internal/clock"
	"github.com/taskhive/taskhive/internal/task/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Activity activitydomain.Service
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	activity activitydomain.Service
}

func NewService(p Params) domain.Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("task.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		activity: p.Activity,
	}
}

func (s *service) Create(ctx context.Context, actorID snowflake.ID, req domain.CreateTaskRequest) (*domain.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	ok, err := s.repo.ListBelongsToProject(ctx, req.ListID, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidList
	}

	now := s.clock.Now()
	task := domain.Task{
		ID:          s.genID.Generate(),
		ProjectID:   req.ProjectID,
		ListID:      req.ListID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		AssignedTo:  req.AssignedTo,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		max, err := repo.MaxTaskPosition(ctx, req.ListID)
		if err != nil {
			return err
		}
		task.Position = max + 1
		if err := repo.CreateTask(ctx, &task); err != nil {
			return err
		}
		_, err = s.activity.Record(ctx, tx, &actorID, "task_created",
			activitydomain.TargetFor(activitydomain.TargetTask, task.ID),
			map[string]any{activitydomain.MetadataProjectID: task.ProjectID.String()},
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update writes the task and a task_updated entry even when nothing changed.
// No-op saves still count as updates in the feed.
func (s *service) Update(ctx context.Context, taskID, actorID snowflake.ID, req domain.UpdateTaskRequest) (*domain.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = strings.TrimSpace(*req.Description)
	}
	if req.Unassign {
		task.AssignedTo = nil
	} else if req.AssignedTo != nil {
		task.AssignedTo = req.AssignedTo
	}
	task.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateTask(ctx, task); err != nil {
			return err
		}
		_, err := s.activity.Record(ctx, tx, &actorID, "task_updated",
			activitydomain.TargetFor(activitydomain.TargetTask, task.ID),
			map[string]any{activitydomain.MetadataProjectID: task.ProjectID.String()},
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Move records task_moved with the old and new list before the move is
// persisted, then the persisted move records a plain task_updated. Both
// entries and the move itself commit or roll back together.
func (s *service) Move(ctx context.Context, taskID, actorID, toListID snowflake.ID) (*domain.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.ListBelongsToProject(ctx, toListID, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidList
	}

	fromListID := task.ListID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := s.activity.Record(ctx, tx, &actorID, "task_moved",
			activitydomain.TargetFor(activitydomain.TargetTask, task.ID),
			map[string]any{
				activitydomain.MetadataProjectID: task.ProjectID.String(),
				"from_list":                      fromListID.String(),
				"to_list":                        toListID.String(),
			},
		); err != nil {
			return err
		}

		max, err := repo.MaxTaskPosition(ctx, toListID)
		if err != nil {
			return err
		}
		task.ListID = toListID
		task.Position = max + 1
		task.UpdatedAt = s.clock.Now()
		if err := repo.UpdateTask(ctx, task); err != nil {
			return err
		}

		_, err = s.activity.Record(ctx, tx, &actorID, "task_updated",
			activitydomain.TargetFor(activitydomain.TargetTask, task.ID),
			map[string]any{activitydomain.MetadataProjectID: task.ProjectID.String()},
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("task moved",
		zap.String("task_id", task.ID.String()),
		zap.String("from_list", fromListID.String()),
		zap.String("to_list", toListID.String()),
	)
	return task, nil
}

func (s *service) GetByID(ctx context.Context, taskID snowflake.ID) (*domain.Task, error) {
	return s.repo.GetTask(ctx, taskID)
}

func (s *service) ListByList(ctx context.Context, listID snowflake.ID) ([]domain.Task, error) {
	return s.repo.ListTasksByList(ctx, listID)
}

func (s *service) ListByProject(ctx context.Context, projectID snowflake.ID) ([]domain.Task, error) {
	return s.repo.ListTasksByProject(ctx, projectID)
}

func (s *service) AddSubtask(ctx context.Context, taskID, actorID snowflake.ID, title string) (*domain.Subtask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	subtask := domain.Subtask{
		ID:        s.genID.Generate(),
		TaskID:    taskID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateSubtask(ctx, &subtask); err != nil {
			return err
		}
		_, err := s.activity.Record(ctx, tx, &actorID, "subtask_created",
			activitydomain.TargetFor(activitydomain.TargetSubtask, subtask.ID),
			map[string]any{
				activitydomain.MetadataProjectID: task.ProjectID.String(),
				"task_id":                        task.ID.String(),
			},
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (s *service) UpdateSubtask(ctx context.Context, subtaskID, actorID snowflake.ID, req domain.UpdateSubtaskRequest) (*domain.Subtask, error) {
	subtask, err := s.repo.GetSubtask(ctx, subtaskID)
	if err != nil {
		return nil, err
	}
	task, err := s.repo.GetTask(ctx, subtask.TaskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		subtask.Title = title
	}
	if req.Done != nil {
		subtask.Done = *req.Done
	}
	subtask.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateSubtask(ctx, subtask); err != nil {
			return err
		}
		_, err := s.activity.Record(ctx, tx, &actorID, "subtask_updated",
			activitydomain.TargetFor(activitydomain.TargetSubtask, subtask.ID),
			map[string]any{
				activitydomain.MetadataProjectID: task.ProjectID.String(),
				"task_id":                        task.ID.String(),
			},
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return subtask, nil
}

func (s *service) GetSubtaskByID(ctx context.Context, subtaskID snowflake.ID) (*domain.Subtask, error) {
	return s.repo.GetSubtask(ctx, subtaskID)
}

func (s *service) ListSubtasks(ctx context.Context, taskID snowflake.ID) ([]domain.Subtask, error) {
	return s.repo.ListSubtasksByTask(ctx, taskID)
}
