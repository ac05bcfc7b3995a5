package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, teamID, creatorID snowflake.ID, req CreateProjectRequest) (*Project, error)
	Update(ctx context.Context, projectID, actorID snowflake.ID, req UpdateProjectRequest) (*Project, error)
	GetByID(ctx context.Context, projectID snowflake.ID) (*Project, error)
	ListByTeam(ctx context.Context, teamID snowflake.ID) ([]Project, error)

	AddMember(ctx context.Context, projectID, userID snowflake.ID, role ProjectRole) (*ProjectMember, error)
	RemoveMember(ctx context.Context, projectID, userID snowflake.ID) error
	ListMembers(ctx context.Context, projectID snowflake.ID) ([]ProjectMember, error)
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, id snowflake.ID) (*Project, error)
	UpdateProject(ctx context.Context, project *Project) error
	ListProjectsByTeam(ctx context.Context, teamID snowflake.ID) ([]Project, error)

	GetMember(ctx context.Context, projectID, userID snowflake.ID) (*ProjectMember, error)
	CreateMember(ctx context.Context, member *ProjectMember) error
	UpdateMemberRole(ctx context.Context, memberID snowflake.ID, role ProjectRole) error
	DeleteMember(ctx context.Context, memberID snowflake.ID) error
	ListMembers(ctx context.Context, projectID snowflake.ID) ([]ProjectMember, error)
}

type CreateProjectRequest struct {
	Name        string
	Description string
}

type UpdateProjectRequest struct {
	Name        *string
	Description *string
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidRole     = errors.New("invalid_role")
	ErrProjectNotFound = errors.New("project_not_found")
	ErrNotAMember      = errors.New("not_a_member")
)
