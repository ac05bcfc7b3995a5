package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, creatorID snowflake.ID, req CreateTeamRequest) (*Team, error)
	Update(ctx context.Context, teamID, actorID snowflake.ID, req UpdateTeamRequest) (*Team, error)
	GetByID(ctx context.Context, teamID snowflake.ID) (*Team, error)
	ListByUser(ctx context.Context, userID snowflake.ID) ([]TeamListItem, error)

	AddMember(ctx context.Context, teamID, userID snowflake.ID, role Role) (*Membership, error)
	RemoveMember(ctx context.Context, teamID, userID snowflake.ID) error
	ListMembers(ctx context.Context, teamID snowflake.ID) ([]Membership, error)
	TransferOwnership(ctx context.Context, teamID, actingUserID, newOwnerUserID snowflake.ID) (*Membership, error)

	CreateInvite(ctx context.Context, teamID snowflake.ID, req CreateInviteRequest) (*Invite, error)
	AcceptInvite(ctx context.Context, token string, userID snowflake.ID, userEmail string) (*Membership, error)
	RevokeInvite(ctx context.Context, teamID snowflake.ID, token string) (*Invite, error)
}

type CreateTeamRequest struct {
	Name        string
	Description string
}

type UpdateTeamRequest struct {
	Name        *string
	Description *string
}

type CreateInviteRequest struct {
	Email     string
	Role      Role
	InvitedBy snowflake.ID
}

type TeamListItem struct {
	ID        snowflake.ID `json:"id"`
	Name      string       `json:"name"`
	Slug      string       `json:"slug"`
	Role      Role         `json:"role"`
	CreatedAt time.Time    `json:"created_at"`
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidRole         = errors.New("invalid_role")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrTeamNotFound        = errors.New("team_not_found")
	ErrNotAMember          = errors.New("not_a_member")
	ErrAlreadyMember       = errors.New("already_member")
	ErrLastOwner           = errors.New("last_owner")
	ErrNotOwner            = errors.New("not_owner")
	ErrInviteNotFound      = errors.New("invite_not_found")
	ErrInviteNotPending    = errors.New("invite_not_pending")
	ErrInviteEmailMismatch = errors.New("invite_email_mismatch")
)
