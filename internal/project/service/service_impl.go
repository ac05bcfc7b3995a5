package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/taskhive/taskhive/internal/activity/domain"
	"github.com/taskhive/taskhive/internal/clock"
	"github.com/taskhive/taskhive/internal/project/domain"
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
		log:      p.Log.Named("project.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		activity: p.Activity,
	}
}

// Create stores the project, grants the creator MANAGER membership and writes
// the project_created entry, all in one transaction.
func (s *service) Create(ctx context.Context, teamID, creatorID snowflake.ID, req domain.CreateProjectRequest) (*domain.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	project := domain.Project{
		ID:          s.genID.Generate(),
		TeamID:      teamID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateProject(ctx, &project); err != nil {
			return err
		}

		manager := domain.ProjectMember{
			ID:        s.genID.Generate(),
			ProjectID: project.ID,
			UserID:    creatorID,
			Role:      domain.ProjectRoleManager,
			AddedAt:   now,
		}
		if err := repo.CreateMember(ctx, &manager); err != nil {
			return err
		}

		_, err := s.activity.Record(ctx, tx, &creatorID, "project_created",
			activitydomain.TargetFor(activitydomain.TargetProject, project.ID),
			map[string]any{activitydomain.MetadataProjectID: project.ID.String()},
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("team_id", teamID.String()),
	)
	return &project, nil
}

func (s *service) Update(ctx context.Context, projectID, actorID snowflake.ID, req domain.UpdateProjectRequest) (*domain.Project, error) {
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		project.Name = name
	}
	if req.Description != nil {
		project.Description = strings.TrimSpace(*req.Description)
	}
	project.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateProject(ctx, project); err != nil {
			return err
		}
		_, err := s.activity.Record(ctx, tx, &actorID, "project_updated",
			activitydomain.TargetFor(activitydomain.TargetProject, project.ID),
			map[string]any{activitydomain.MetadataProjectID: project.ID.String()},
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (s *service) GetByID(ctx context.Context, projectID snowflake.ID) (*domain.Project, error) {
	return s.repo.GetProject(ctx, projectID)
}

func (s *service) ListByTeam(ctx context.Context, teamID snowflake.ID) ([]domain.Project, error) {
	return s.repo.ListProjectsByTeam(ctx, teamID)
}

// AddMember upserts like team membership: same role is a no-op, a differing
// role updates the row.
func (s *service) AddMember(ctx context.Context, projectID, userID snowflake.ID, role domain.ProjectRole) (*domain.ProjectMember, error) {
	if role == "" {
		role = domain.ProjectRoleMember
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetMember(ctx, projectID, userID)
	switch {
	case err == nil:
		if existing.Role != role {
			if err := s.repo.UpdateMemberRole(ctx, existing.ID, role); err != nil {
				return nil, err
			}
			existing.Role = role
		}
		return existing, nil
	case errors.Is(err, domain.ErrNotAMember):
		member := domain.ProjectMember{
			ID:        s.genID.Generate(),
			ProjectID: projectID,
			UserID:    userID,
			Role:      role,
			AddedAt:   s.clock.Now(),
		}
		if err := s.repo.CreateMember(ctx, &member); err != nil {
			return nil, err
		}
		return &member, nil
	default:
		return nil, err
	}
}

func (s *service) RemoveMember(ctx context.Context, projectID, userID snowflake.ID) error {
	member, err := s.repo.GetMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	return s.repo.DeleteMember(ctx, member.ID)
}

func (s *service) ListMembers(ctx context.Context, projectID snowflake.ID) ([]domain.ProjectMember, error) {
	return s.repo.ListMembers(ctx, projectID)
}
