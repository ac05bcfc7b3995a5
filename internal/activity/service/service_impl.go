package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/taskhive/taskhive/internal/activity/domain"
	"github.com/taskhive/taskhive/internal/clock"
	"github.com/taskhive/taskhive/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Metrics *telemetry.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	metrics *telemetry.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("activity.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, actorID *snowflake.ID, action string, target domain.Target, metadata map[string]any) (*domain.Entry, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		return nil, domain.ErrInvalidAction
	}

	payload := map[string]any{}
	for key, value := range metadata {
		if key == "" {
			continue
		}
		payload[key] = value
	}

	entry := domain.Entry{
		ID:         s.genID.Generate(),
		ActorID:    actorID,
		Action:     action,
		TargetType: target.Type,
		TargetID:   target.ID,
		Metadata:   datatypes.JSONMap(payload),
		CreatedAt:  s.clock.Now(),
	}

	if tx == nil {
		tx = s.db
	}
	if err := s.repo.Insert(ctx, tx, &entry); err != nil {
		s.log.Warn("failed to write activity entry", zap.String("action", action), zap.Error(err))
		return nil, err
	}
	s.metrics.CountActivity(action)
	return &entry, nil
}

func (s *Service) ListByProject(ctx context.Context, projectID snowflake.ID, limit int) ([]domain.Entry, error) {
	if projectID == 0 {
		return nil, domain.ErrInvalidProject
	}
	if limit <= 0 || limit > 250 {
		limit = 50
	}
	return s.repo.ListByProjectID(ctx, s.db, projectID.String(), limit)
}
