package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/taskhive/taskhive/internal/activity/domain"
	"github.com/taskhive/taskhive/internal/clock"
	"github.com/taskhive/taskhive/internal/comment/domain"
	taskdomain "github.com/taskhive/taskhive/internal/task/domain"
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
	Tasks    taskdomain.Service
	Activity activitydomain.Service
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	tasks    taskdomain.Service
	activity activitydomain.Service
}

func NewService(p Params) domain.Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("comment.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		tasks:    p.Tasks,
		activity: p.Activity,
	}
}

func (s *service) Create(ctx context.Context, taskID, authorID snowflake.ID, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrEmptyBody
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	comment := domain.Comment{
		ID:        s.genID.Generate(),
		TaskID:    taskID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, &comment); err != nil {
			return err
		}
		_, err := s.activity.Record(ctx, tx, &authorID, "comment_created",
			activitydomain.TargetFor(activitydomain.TargetComment, comment.ID),
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
	return &comment, nil
}

// Update allows only the author to edit their comment.
func (s *service) Update(ctx context.Context, commentID, actorID snowflake.ID, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrEmptyBody
	}
	comment, err := s.repo.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actorID {
		return nil, domain.ErrNotAuthor
	}
	task, err := s.tasks.GetByID(ctx, comment.TaskID)
	if err != nil {
		return nil, err
	}

	comment.Body = body
	comment.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, comment); err != nil {
			return err
		}
		_, err := s.activity.Record(ctx, tx, &actorID, "comment_updated",
			activitydomain.TargetFor(activitydomain.TargetComment, comment.ID),
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
	return comment, nil
}

func (s *service) GetByID(ctx context.Context, commentID snowflake.ID) (*domain.Comment, error) {
	return s.repo.Get(ctx, commentID)
}

func (s *service) ListByTask(ctx context.Context, taskID snowflake.ID) ([]domain.Comment, error) {
	return s.repo.ListByTask(ctx, taskID)
}
