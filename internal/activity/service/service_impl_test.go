package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/activity/domain"
	"github.com/taskhive/taskhive/internal/activity/repository"
	"github.com/taskhive/taskhive/internal/clock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Entry{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return svc, db, node, fake
}

func TestRecordPersistsEntry(t *testing.T) {
	svc, db, node, _ := setup(t)
	ctx := context.Background()
	actor := node.Generate()
	taskID := node.Generate()
	projectID := node.Generate()

	entry, err := svc.Record(ctx, db, &actor, "task_created",
		domain.TargetFor(domain.TargetTask, taskID),
		map[string]any{domain.MetadataProjectID: projectID.String()},
	)
	require.NoError(t, err)
	require.Equal(t, "task_created", entry.Action)
	require.Equal(t, domain.TargetTask, entry.TargetType)
	require.Equal(t, taskID.String(), entry.TargetID)

	var count int64
	require.NoError(t, db.Model(&domain.Entry{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRecordRejectsBlankAction(t *testing.T) {
	svc, db, node, _ := setup(t)
	actor := node.Generate()

	_, err := svc.Record(context.Background(), db, &actor, "  ", domain.Target{}, nil)
	require.ErrorIs(t, err, domain.ErrInvalidAction)
}

func TestRecordRollsBackWithCallerTransaction(t *testing.T) {
	svc, db, node, _ := setup(t)
	ctx := context.Background()
	actor := node.Generate()

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Record(ctx, tx, &actor, "team_created", domain.Target{}, nil)
		require.NoError(t, err)
		return fmt.Errorf("forced rollback")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.Entry{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestListByProjectFiltersOnMetadata(t *testing.T) {
	svc, db, node, fake := setup(t)
	ctx := context.Background()
	actor := node.Generate()
	projectA := node.Generate()
	projectB := node.Generate()

	for i := 0; i < 3; i++ {
		_, err := svc.Record(ctx, db, &actor, "task_updated",
			domain.TargetFor(domain.TargetTask, node.Generate()),
			map[string]any{domain.MetadataProjectID: projectA.String()},
		)
		require.NoError(t, err)
		fake.Advance(time.Minute)
	}
	_, err := svc.Record(ctx, db, &actor, "task_updated",
		domain.TargetFor(domain.TargetTask, node.Generate()),
		map[string]any{domain.MetadataProjectID: projectB.String()},
	)
	require.NoError(t, err)

	entries, err := svc.ListByProject(ctx, projectA, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		require.False(t, entries[i].CreatedAt.After(entries[i-1].CreatedAt))
	}

	_, err = svc.ListByProject(ctx, 0, 10)
	require.ErrorIs(t, err, domain.ErrInvalidProject)
}

func TestListByProjectClampsLimit(t *testing.T) {
	svc, db, node, _ := setup(t)
	ctx := context.Background()
	actor := node.Generate()
	projectID := node.Generate()

	_, err := svc.Record(ctx, db, &actor, "project_created",
		domain.TargetFor(domain.TargetProject, projectID),
		map[string]any{domain.MetadataProjectID: projectID.String()},
	)
	require.NoError(t, err)

	entries, err := svc.ListByProject(ctx, projectID, -5)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, err = svc.ListByProject(ctx, projectID, 10_000)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
