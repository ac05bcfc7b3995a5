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
	"github.com/taskhive/taskhive/internal/team/domain"
	"github.com/taskhive/taskhive/internal/team/repository"
	userdomain "github.com/taskhive/taskhive/internal/user/domain"
	"github.com/taskhive/taskhive/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	service  domain.Service
	activity activitydomain.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&domain.Team{},
		&domain.Membership{},
		&domain.Invite{},
		&userdomain.User{},
		&activitydomain.Entry{},
	)
	require.NoError(t, err)

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

	return &fixture{db: db, node: node, clock: fake, service: svc, activity: activitySvc}
}

func (f *fixture) newUser(t *testing.T, email string) snowflake.ID {
	t.Helper()
	user := userdomain.User{
		ID:           f.node.Generate(),
		Email:        email,
		PasswordHash: "x",
		CreatedAt:    f.clock.Now(),
		UpdatedAt:    f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&user).Error)
	return user.ID
}

func (f *fixture) membership(t *testing.T, teamID, userID snowflake.ID) *domain.Membership {
	t.Helper()
	var member domain.Membership
	err := f.db.First(&member, "team_id = ? AND user_id = ?", teamID, userID).Error
	require.NoError(t, err)
	return &member
}

func TestCreateTeamGrantsOwnerAndRecordsActivity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	creator := f.newUser(t, "alice@example.com")

	team, err := f.service.Create(ctx, creator, domain.CreateTeamRequest{
		Name:        "  Platform Team ",
		Description: "infra and tooling",
	})
	require.NoError(t, err)
	require.Equal(t, "Platform Team", team.Name)
	require.Equal(t, "platform-team", team.Slug)
	require.Equal(t, creator, team.CreatedBy)

	member := f.membership(t, team.ID, creator)
	require.Equal(t, domain.RoleOwner, member.Role)

	var entries []activitydomain.Entry
	require.NoError(t, f.db.Find(&entries, "action = ?", "team_created").Error)
	require.Len(t, entries, 1)
	require.Equal(t, team.ID.String(), entries[0].TargetID)
	require.Equal(t, activitydomain.TargetTeam, entries[0].TargetType)
}

func TestCreateTeamRejectsBlankName(t *testing.T) {
	f := setup(t)
	creator := f.newUser(t, "alice@example.com")

	_, err := f.service.Create(context.Background(), creator, domain.CreateTeamRequest{Name: "   "})
	require.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestAddMemberIsIdempotentUpsert(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.newUser(t, "owner@example.com")
	bob := f.newUser(t, "bob@example.com")

	team, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "Design"})
	require.NoError(t, err)

	first, err := f.service.AddMember(ctx, team.ID, bob, domain.RoleViewer)
	require.NoError(t, err)
	require.Equal(t, domain.RoleViewer, first.Role)

	// Same role again is a no-op.
	again, err := f.service.AddMember(ctx, team.ID, bob, domain.RoleViewer)
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)

	// Differing role updates the row in place instead of duplicating it.
	promoted, err := f.service.AddMember(ctx, team.ID, bob, domain.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, first.ID, promoted.ID)
	require.Equal(t, domain.RoleAdmin, promoted.Role)

	var count int64
	require.NoError(t, f.db.Model(&domain.Membership{}).
		Where("team_id = ? AND user_id = ?", team.ID, bob).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestAddMemberRejectsUnknownRole(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.newUser(t, "owner@example.com")
	team, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "Design"})
	require.NoError(t, err)

	_, err = f.service.AddMember(ctx, team.ID, f.newUser(t, "x@example.com"), domain.Role("SUPERUSER"))
	require.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestRemoveMemberRejectsLastOwner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.newUser(t, "owner@example.com")
	team, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "Ops"})
	require.NoError(t, err)

	err = f.service.RemoveMember(ctx, team.ID, owner)
	require.ErrorIs(t, err, domain.ErrLastOwner)

	// Membership survives the rejected removal.
	member := f.membership(t, team.ID, owner)
	require.Equal(t, domain.RoleOwner, member.Role)
}

func TestRemoveOwnerAllowedWithCoOwner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.newUser(t, "owner@example.com")
	coOwner := f.newUser(t, "co@example.com")

	team, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "Ops"})
	require.NoError(t, err)
	_, err = f.service.AddMember(ctx, team.ID, coOwner, domain.RoleOwner)
	require.NoError(t, err)

	require.NoError(t, f.service.RemoveMember(ctx, team.ID, owner))

	var count int64
	require.NoError(t, f.db.Model(&domain.Membership{}).
		Where("team_id = ? AND role = ?", team.ID, domain.RoleOwner).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRemoveMemberUnknownUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.newUser(t, "owner@example.com")
	team, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "Ops"})
	require.NoError(t, err)

	err = f.service.RemoveMember(ctx, team.ID, f.node.Generate())
	require.ErrorIs(t, err, domain.ErrNotAMember)
}

func TestTransferOwnershipToExistingMember(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.newUser(t, "owner@example.com")
	bob := f.newUser(t, "bob@example.com")

	team, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "Core"})
	require.NoError(t, err)
	_, err = f.service.AddMember(ctx, team.ID, bob, domain.RoleMember)
	require.NoError(t, err)

	promoted, err := f.service.TransferOwnership(ctx, team.ID, owner, bob)
	require.NoError(t, err)
	require.Equal(t, domain.RoleOwner, promoted.Role)

	require.Equal(t, domain.RoleAdmin, f.membership(t, team.ID, owner).Role)
	require.Equal(t, domain.RoleOwner, f.membership(t, team.ID, bob).Role)

	var reloaded domain.Team
	require.NoError(t, f.db.First(&reloaded, "id = ?", team.ID).Error)
	require.Equal(t, bob, reloaded.CreatedBy)

	// Exactly one OWNER after the transfer.
	var owners int64
	require.NoError(t, f.db.Model(&domain.Membership{}).
		Where("team_id = ? AND role = ?", team.ID, domain.RoleOwner).Count(&owners).Error)
	require.EqualValues(t, 1, owners)
}

func TestTransferOwnershipAddsNonMember(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.newUser(t, "owner@example.com")
	carol := f.newUser(t, "carol@example.com")

	team, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "Core"})
	require.NoError(t, err)

	promoted, err := f.service.TransferOwnership(ctx, team.ID, owner, carol)
	require.NoError(t, err)
	require.Equal(t, domain.RoleOwner, promoted.Role)
	require.Equal(t, carol, promoted.UserID)
}

func TestTransferOwnershipRequiresOwner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.newUser(t, "owner@example.com")
	bob := f.newUser(t, "bob@example.com")
	carol := f.newUser(t, "carol@example.com")

	team, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "Core"})
	require.NoError(t, err)
	_, err = f.service.AddMember(ctx, team.ID, bob, domain.RoleAdmin)
	require.NoError(t, err)

	_, err = f.service.TransferOwnership(ctx, team.ID, bob, carol)
	require.ErrorIs(t, err, domain.ErrNotOwner)

	// Non-members cannot transfer either.
	_, err = f.service.TransferOwnership(ctx, team.ID, carol, bob)
	require.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestCreateInviteUpsertsPending(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.newUser(t, "owner@example.com")
	team, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "Core"})
	require.NoError(t, err)

	first, err := f.service.CreateInvite(ctx, team.ID, domain.CreateInviteRequest{
		Email:     "Dana@Example.com",
		Role:      domain.RoleMember,
		InvitedBy: owner,
	})
	require.NoError(t, err)
	require.Equal(t, "dana@example.com", first.Email)
	require.Equal(t, domain.InvitePending, first.Status)
	require.NotEmpty(t, first.Token)

	// Re-inviting while a pending invite is open updates it in place.
	second, err := f.service.CreateInvite(ctx, team.ID, domain.CreateInviteRequest{
		Email:     "dana@example.com",
		Role:      domain.RoleAdmin,
		InvitedBy: owner,
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.Token, second.Token)
	require.Equal(t, domain.RoleAdmin, second.Role)

	var count int64
	require.NoError(t, f.db.Model(&domain.Invite{}).
		Where("team_id = ?", team.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCreateInviteRejectsExistingMember(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.newUser(t, "owner@example.com")
	team, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "Core"})
	require.NoError(t, err)

	_, err = f.service.CreateInvite(ctx, team.ID, domain.CreateInviteRequest{
		Email:     "owner@example.com",
		Role:      domain.RoleMember,
		InvitedBy: owner,
	})
	require.ErrorIs(t, err, domain.ErrAlreadyMember)
}

func TestCreateInviteRejectsBadInput(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.newUser(t, "owner@example.com")
	team, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "Core"})
	require.NoError(t, err)

	_, err = f.service.CreateInvite(ctx, team.ID, domain.CreateInviteRequest{
		Email: "not-an-email", InvitedBy: owner,
	})
	require.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = f.service.CreateInvite(ctx, team.ID, domain.CreateInviteRequest{
		Email: "dana@example.com", Role: domain.Role("ROOT"), InvitedBy: owner,
	})
	require.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestAcceptInviteLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.newUser(t, "owner@example.com")
	dana := f.newUser(t, "dana@example.com")

	team, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "Core"})
	require.NoError(t, err)

	invite, err := f.service.CreateInvite(ctx, team.ID, domain.CreateInviteRequest{
		Email:     "dana@example.com",
		Role:      domain.RoleAdmin,
		InvitedBy: owner,
	})
	require.NoError(t, err)

	member, err := f.service.AcceptInvite(ctx, invite.Token, dana, "dana@example.com")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, member.Role)
	require.Equal(t, team.ID, member.TeamID)

	var reloaded domain.Invite
	require.NoError(t, f.db.First(&reloaded, "id = ?", invite.ID).Error)
	require.Equal(t, domain.InviteAccepted, reloaded.Status)
	require.NotNil(t, reloaded.RespondedAt)

	// Terminal state: accepting twice fails.
	_, err = f.service.AcceptInvite(ctx, invite.Token, dana, "dana@example.com")
	require.ErrorIs(t, err, domain.ErrInviteNotPending)
}

func TestAcceptInviteEmailMismatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.newUser(t, "owner@example.com")
	mallory := f.newUser(t, "mallory@example.com")

	team, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "Core"})
	require.NoError(t, err)

	invite, err := f.service.CreateInvite(ctx, team.ID, domain.CreateInviteRequest{
		Email:     "dana@example.com",
		Role:      domain.RoleMember,
		InvitedBy: owner,
	})
	require.NoError(t, err)

	_, err = f.service.AcceptInvite(ctx, invite.Token, mallory, "mallory@example.com")
	require.ErrorIs(t, err, domain.ErrInviteEmailMismatch)
}

func TestAcceptInviteUnknownToken(t *testing.T) {
	f := setup(t)
	user := f.newUser(t, "dana@example.com")

	_, err := f.service.AcceptInvite(context.Background(), "deadbeef", user, "dana@example.com")
	require.ErrorIs(t, err, domain.ErrInviteNotFound)
}

func TestRevokeInvite(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.newUser(t, "owner@example.com")
	team, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "Core"})
	require.NoError(t, err)

	invite, err := f.service.CreateInvite(ctx, team.ID, domain.CreateInviteRequest{
		Email:     "dana@example.com",
		Role:      domain.RoleMember,
		InvitedBy: owner,
	})
	require.NoError(t, err)

	revoked, err := f.service.RevokeInvite(ctx, team.ID, invite.Token)
	require.NoError(t, err)
	require.Equal(t, domain.InviteRevoked, revoked.Status)
	require.NotNil(t, revoked.RespondedAt)

	// Terminal: a revoked invite cannot be revoked or accepted.
	_, err = f.service.RevokeInvite(ctx, team.ID, invite.Token)
	require.ErrorIs(t, err, domain.ErrInviteNotPending)

	dana := f.newUser(t, "dana@example.com")
	_, err = f.service.AcceptInvite(ctx, invite.Token, dana, "dana@example.com")
	require.ErrorIs(t, err, domain.ErrInviteNotPending)
}

func TestRevokeInviteWrongTeam(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.newUser(t, "owner@example.com")
	teamA, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "A"})
	require.NoError(t, err)
	teamB, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "B"})
	require.NoError(t, err)

	invite, err := f.service.CreateInvite(ctx, teamA.ID, domain.CreateInviteRequest{
		Email:     "dana@example.com",
		Role:      domain.RoleMember,
		InvitedBy: owner,
	})
	require.NoError(t, err)

	_, err = f.service.RevokeInvite(ctx, teamB.ID, invite.Token)
	require.ErrorIs(t, err, domain.ErrInviteNotFound)
}

func TestListTeamsByUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.newUser(t, "owner@example.com")
	bob := f.newUser(t, "bob@example.com")

	alpha, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "Alpha"})
	require.NoError(t, err)
	_, err = f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "Beta"})
	require.NoError(t, err)
	_, err = f.service.AddMember(ctx, alpha.ID, bob, domain.RoleViewer)
	require.NoError(t, err)

	mine, err := f.service.ListByUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, "Alpha", mine[0].Name)
	require.Equal(t, string(domain.RoleOwner), string(mine[0].Role))

	theirs, err := f.service.ListByUser(ctx, bob)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	require.Equal(t, alpha.ID, theirs[0].ID)
}

func TestPendingInviteUniquenessEnforcedBySchema(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := f.newUser(t, "owner@example.com")
	team, err := f.service.Create(ctx, owner, domain.CreateTeamRequest{Name: "Crew"})
	require.NoError(t, err)

	_, err = f.service.CreateInvite(ctx, team.ID, domain.CreateInviteRequest{
		Email:     "new@example.com",
		Role:      domain.RoleMember,
		InvitedBy: owner,
	})
	require.NoError(t, err)

	// A second PENDING row for the same team and email must be rejected by
	// ux_team_invites_pending even when the service upsert is bypassed.
	dupe := domain.Invite{
		ID:        f.node.Generate(),
		Token:     "racing-token",
		TeamID:    team.ID,
		Email:     "new@example.com",
		Role:      domain.RoleAdmin,
		InvitedBy: owner,
		Status:    domain.InvitePending,
		CreatedAt: f.clock.Now(),
	}
	err = f.db.Create(&dupe).Error
	require.Error(t, err)
	require.True(t, db.IsDuplicateKeyErr(err))

	// Settled invites from earlier cycles stay insertable.
	settled := domain.Invite{
		ID:        f.node.Generate(),
		Token:     "settled-token",
		TeamID:    team.ID,
		Email:     "new@example.com",
		Role:      domain.RoleMember,
		InvitedBy: owner,
		Status:    domain.InviteAccepted,
		CreatedAt: f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&settled).Error)

	var pending int64
	require.NoError(t, f.db.Model(&domain.Invite{}).
		Where("team_id = ? AND email = ? AND status = ?", team.ID, "new@example.com", domain.InvitePending).
		Count(&pending).Error)
	require.EqualValues(t, 1, pending)
}
