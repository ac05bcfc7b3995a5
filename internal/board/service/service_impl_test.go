package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/board/domain"
	"github.com/taskhive/taskhive/internal/board/repository"
	"github.com/taskhive/taskhive/internal/clock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Board{}, &domain.List{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  repository.NewRepository(db),
	})
	return svc, node
}

func TestCreateBoardSeedsDefaultLists(t *testing.T) {
	svc, node := setup(t)
	ctx := context.Background()

	board, err := svc.Create(ctx, node.Generate(), "Sprint Board")
	require.NoError(t, err)

	lists, err := svc.Lists(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, lists, 3)
	require.Equal(t, "To Do", lists[0].Name)
	require.Equal(t, "In Progress", lists[1].Name)
	require.Equal(t, "Done", lists[2].Name)
	for i, list := range lists {
		require.Equal(t, i, list.Position)
	}
}

func TestAddListAppendsAfterDefaults(t *testing.T) {
	svc, node := setup(t)
	ctx := context.Background()

	board, err := svc.Create(ctx, node.Generate(), "Sprint Board")
	require.NoError(t, err)

	list, err := svc.AddList(ctx, board.ID, "Blocked")
	require.NoError(t, err)
	require.Equal(t, 3, list.Position)

	_, err = svc.AddList(ctx, board.ID, " ")
	require.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.AddList(ctx, node.Generate(), "Nowhere")
	require.ErrorIs(t, err, domain.ErrBoardNotFound)
}

func TestRenameBoard(t *testing.T) {
	svc, node := setup(t)
	ctx := context.Background()

	board, err := svc.Create(ctx, node.Generate(), "Sprint Board")
	require.NoError(t, err)

	renamed, err := svc.Rename(ctx, board.ID, "Iteration Board")
	require.NoError(t, err)
	require.Equal(t, "Iteration Board", renamed.Name)

	_, err = svc.Rename(ctx, node.Generate(), "Ghost")
	require.ErrorIs(t, err, domain.ErrBoardNotFound)
}
