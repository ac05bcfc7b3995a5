package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	activitydomain "github.com/taskhive/taskhive/internal/activity/domain"
	activityrepository "github.com/taskhive/taskhive/internal/activity/repository"
	activityservice "github.com/taskhive/taskhive/internal/activity/service"
	"github.com/taskhive/taskhive/internal/clock"
	"github.com/taskhive/taskhive/internal/project/domain"
	"github.com/taskhive/taskhive/internal/project/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Project{}, &domain.ProjectMember{}, &activitydomain.Entry{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	activitySvc := activityservice.NewService(activityservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fake,
		Repo:  activityrepository.Provide(),
	})

	svc := NewService(Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Clock:    fake,
		Repo:     repository.NewRepository(db),
		Activity: activitySvc,
	})
	return svc, db, node
}

func TestCreateProjectGrantsManagerAndRecordsActivity(t *testing.T) {
	svc, db, node := setup(t)
	ctx := context.Background()
	teamID := node.Generate()
	creator := node.Generate()

	project, err := svc.Create(ctx, teamID, creator, domain.CreateProjectRequest{
		Name:        " Launch ",
		Description: "Q3 release",
	})
	require.NoError(t, err)
	require.Equal(t, "Launch", project.Name)
	require.Equal(t, teamID, project.TeamID)

	members, err := svc.ListMembers(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, creator, members[0].UserID)
	require.Equal(t, domain.ProjectRoleManager, members[0].Role)

	var entries []activitydomain.Entry
	require.NoError(t, db.Find(&entries, "action = ?", "project_created").Error)
	require.Len(t, entries, 1)
	require.Equal(t, project.ID.String(), entries[0].Metadata[activitydomain.MetadataProjectID])
}

func TestCreateProjectRejectsBlankName(t *testing.T) {
	svc, _, node := setup(t)

	_, err := svc.Create(context.Background(), node.Generate(), node.Generate(), domain.CreateProjectRequest{Name: "  "})
	require.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestUpdateProjectRecordsActivity(t *testing.T) {
	svc, db, node := setup(t)
	ctx := context.Background()
	creator := node.Generate()

	project, err := svc.Create(ctx, node.Generate(), creator, domain.CreateProjectRequest{Name: "Launch"})
	require.NoError(t, err)

	name := "Relaunch"
	updated, err := svc.Update(ctx, project.ID, creator, domain.UpdateProjectRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Relaunch", updated.Name)

	var count int64
	require.NoError(t, db.Model(&activitydomain.Entry{}).
		Where("action = ?", "project_updated").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestProjectMemberUpsert(t *testing.T) {
	svc, _, node := setup(t)
	ctx := context.Background()
	creator := node.Generate()
	bob := node.Generate()

	project, err := svc.Create(ctx, node.Generate(), creator, domain.CreateProjectRequest{Name: "Launch"})
	require.NoError(t, err)

	member, err := svc.AddMember(ctx, project.ID, bob, "")
	require.NoError(t, err)
	require.Equal(t, domain.ProjectRoleMember, member.Role)

	promoted, err := svc.AddMember(ctx, project.ID, bob, domain.ProjectRoleManager)
	require.NoError(t, err)
	require.Equal(t, member.ID, promoted.ID)
	require.Equal(t, domain.ProjectRoleManager, promoted.Role)

	_, err = svc.AddMember(ctx, project.ID, bob, domain.ProjectRole("LEAD"))
	require.ErrorIs(t, err, domain.ErrInvalidRole)

	require.NoError(t, svc.RemoveMember(ctx, project.ID, bob))
	err = svc.RemoveMember(ctx, project.ID, bob)
	require.ErrorIs(t, err, domain.ErrNotAMember)
}
