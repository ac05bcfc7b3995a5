package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/clock"
	"github.com/taskhive/taskhive/internal/user/domain"
	"github.com/taskhive/taskhive/internal/user/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.NewRepository(db),
	})
	return svc, fake
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, domain.RegisterRequest{
		Email:    " Dana@Example.COM ",
		Name:     "Dana",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	require.Equal(t, "dana@example.com", usr.Email)
	require.NotEmpty(t, usr.PasswordHash)
	require.NotEqual(t, "hunter2hunter2", usr.PasswordHash)

	got, err := svc.Login(ctx, "dana@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, usr.ID, got.ID)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Email: "not-an-email", Password: "hunter2hunter2"})
	require.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Register(ctx, domain.RegisterRequest{Email: "dana@example.com", Password: "short"})
	require.ErrorIs(t, err, domain.ErrInvalidPassword)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Email: "dana@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, domain.RegisterRequest{Email: "DANA@example.com", Password: "hunter2hunter2"})
	require.ErrorIs(t, err, domain.ErrUserExists)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Email: "dana@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "dana@example.com", "wrong-password")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	svc, fake := setup(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, domain.RegisterRequest{Email: "dana@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	fake.Advance(time.Hour)
	name := " Dana L "
	bio := "Building things."
	updated, err := svc.UpdateProfile(ctx, usr.ID, domain.UpdateProfileRequest{Name: &name, Bio: &bio})
	require.NoError(t, err)
	require.Equal(t, "Dana L", updated.Name)
	require.Equal(t, "Building things.", updated.Bio)
	require.True(t, updated.UpdatedAt.After(usr.CreatedAt))

	_, err = svc.UpdateProfile(ctx, snowflake.ID(999), domain.UpdateProfileRequest{Name: &name})
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
