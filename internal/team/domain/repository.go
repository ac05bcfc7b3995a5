package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateTeam(ctx context.Context, team *Team) error
	GetTeam(ctx context.Context, id snowflake.ID) (*Team, error)
	UpdateTeam(ctx context.Context, team *Team) error
	ListTeamsByUser(ctx context.Context, userID snowflake.ID) ([]TeamListItem, error)

	GetMembership(ctx context.Context, teamID, userID snowflake.ID) (*Membership, error)
	CreateMembership(ctx context.Context, member *Membership) error
	UpdateMembershipRole(ctx context.Context, membershipID snowflake.ID, role Role) error
	DeleteMembership(ctx context.Context, membershipID snowflake.ID) error
	ListMembers(ctx context.Context, teamID snowflake.ID) ([]Membership, error)

	// OwnerMemberships locks the OWNER rows for the team when forUpdate is
	// set, so concurrent removals cannot both pass the last-owner check.
	OwnerMemberships(ctx context.Context, teamID snowflake.ID, forUpdate bool) ([]Membership, error)
	DemoteOtherOwners(ctx context.Context, teamID, keepUserID snowflake.ID, to Role) error

	HasMemberWithEmail(ctx context.Context, teamID snowflake.ID, email string) (bool, error)

	// GetPendingInvite locks the pending row when forUpdate is set, so
	// concurrent re-invites serialize on the role update.
	GetPendingInvite(ctx context.Context, teamID snowflake.ID, email string, forUpdate bool) (*Invite, error)
	GetInviteByToken(ctx context.Context, token string) (*Invite, error)
	CreateInvite(ctx context.Context, invite *Invite) error
	UpdateInvite(ctx context.Context, invite *Invite) error
}
