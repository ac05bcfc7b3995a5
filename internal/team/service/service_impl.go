package service

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	activitydomain "github.com/taskhive/taskhive/internal/activity/domain"
	"github.com/taskhive/taskhive/internal/clock"
	"github.com/taskhive/taskhive/internal/jobs"
	"github.com/taskhive/taskhive/internal/mailer"
	"github.com/taskhive/taskhive/internal/team/domain"
	"github.com/taskhive/taskhive/pkg/db"
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
	Jobs     *jobs.Queue     `optional:"true"`
	Mailer   mailer.Provider `optional:"true"`
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	activity activitydomain.Service
	jobs     *jobs.Queue
	mailer   mailer.Provider
}

func NewService(p Params) domain.Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("team.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		activity: p.Activity,
		jobs:     p.Jobs,
		mailer:   p.Mailer,
	}
}

func (s *service) Create(ctx context.Context, creatorID snowflake.ID, req domain.CreateTeamRequest) (*domain.Team, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	team := domain.Team{
		ID:          s.genID.Generate(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateTeam(ctx, &team); err != nil {
			return err
		}

		member := domain.Membership{
			ID:       s.genID.Generate(),
			TeamID:   team.ID,
			UserID:   creatorID,
			Role:     domain.RoleOwner,
			JoinedAt: now,
		}
		if err := repo.CreateMembership(ctx, &member); err != nil {
			return err
		}

		_, err := s.activity.Record(ctx, tx, &creatorID, "team_created",
			activitydomain.TargetFor(activitydomain.TargetTeam, team.ID),
			map[string]any{"team_id": team.ID.String()},
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("team created",
		zap.String("team_id", team.ID.String()),
		zap.String("created_by", creatorID.String()),
	)
	return &team, nil
}

func (s *service) Update(ctx context.Context, teamID, actorID snowflake.ID, req domain.UpdateTeamRequest) (*domain.Team, error) {
	team, err := s.repo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		team.Name = name
		team.Slug = slug.Make(name)
	}
	if req.Description != nil {
		team.Description = strings.TrimSpace(*req.Description)
	}
	team.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateTeam(ctx, team); err != nil {
			return err
		}
		_, err := s.activity.Record(ctx, tx, &actorID, "team_updated",
			activitydomain.TargetFor(activitydomain.TargetTeam, team.ID),
			map[string]any{"team_id": team.ID.String()},
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (s *service) GetByID(ctx context.Context, teamID snowflake.ID) (*domain.Team, error) {
	return s.repo.GetTeam(ctx, teamID)
}

func (s *service) ListByUser(ctx context.Context, userID snowflake.ID) ([]domain.TeamListItem, error) {
	return s.repo.ListTeamsByUser(ctx, userID)
}

// AddMember is an idempotent upsert: re-adding with the same role is a no-op,
// a differing role updates the existing membership in place.
func (s *service) AddMember(ctx context.Context, teamID, userID snowflake.ID, role domain.Role) (*domain.Membership, error) {
	if role == "" {
		role = domain.RoleMember
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if _, err := s.repo.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetMembership(ctx, teamID, userID)
	switch {
	case err == nil:
		if existing.Role != role {
			if err := s.repo.UpdateMembershipRole(ctx, existing.ID, role); err != nil {
				return nil, err
			}
			existing.Role = role
		}
		return existing, nil
	case errors.Is(err, domain.ErrNotAMember):
		member := domain.Membership{
			ID:       s.genID.Generate(),
			TeamID:   teamID,
			UserID:   userID,
			Role:     role,
			JoinedAt: s.clock.Now(),
		}
		if err := s.repo.CreateMembership(ctx, &member); err != nil {
			return nil, err
		}
		s.log.Info("user joined team",
			zap.String("user_id", userID.String()),
			zap.String("team_id", teamID.String()),
			zap.String("role", string(role)),
		)
		return &member, nil
	default:
		return nil, err
	}
}

// RemoveMember deletes the membership unless it is the sole OWNER membership.
// The owner-count check and the delete share one transaction, with the OWNER
// rows locked, so two concurrent removals cannot leave the team ownerless.
func (s *service) RemoveMember(ctx context.Context, teamID, userID snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		member, err := repo.GetMembership(ctx, teamID, userID)
		if err != nil {
			return err
		}

		if member.Role == domain.RoleOwner {
			owners, err := repo.OwnerMemberships(ctx, teamID, true)
			if err != nil {
				return err
			}
			if len(owners) <= 1 {
				return domain.ErrLastOwner
			}
		}

		return repo.DeleteMembership(ctx, member.ID)
	})
}

func (s *service) ListMembers(ctx context.Context, teamID snowflake.ID) ([]domain.Membership, error) {
	return s.repo.ListMembers(ctx, teamID)
}

// TransferOwnership atomically demotes every other OWNER to ADMIN, promotes
// the new owner, and repoints the team's creator reference. A failure at any
// step rolls back the whole transfer.
func (s *service) TransferOwnership(ctx context.Context, teamID, actingUserID, newOwnerUserID snowflake.ID) (*domain.Membership, error) {
	var promoted *domain.Membership

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		acting, err := repo.GetMembership(ctx, teamID, actingUserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotAMember) {
				return domain.ErrNotOwner
			}
			return err
		}
		if acting.Role != domain.RoleOwner {
			return domain.ErrNotOwner
		}

		team, err := repo.GetTeam(ctx, teamID)
		if err != nil {
			return err
		}

		// Locks the OWNER rows so a concurrent removal or transfer
		// serializes behind this one.
		if _, err := repo.OwnerMemberships(ctx, teamID, true); err != nil {
			return err
		}

		member, err := repo.GetMembership(ctx, teamID, newOwnerUserID)
		if errors.Is(err, domain.ErrNotAMember) {
			member = &domain.Membership{
				ID:       s.genID.Generate(),
				TeamID:   teamID,
				UserID:   newOwnerUserID,
				Role:     domain.RoleMember,
				JoinedAt: s.clock.Now(),
			}
			if err := repo.CreateMembership(ctx, member); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := repo.DemoteOtherOwners(ctx, teamID, newOwnerUserID, domain.RoleAdmin); err != nil {
			return err
		}
		if err := repo.UpdateMembershipRole(ctx, member.ID, domain.RoleOwner); err != nil {
			return err
		}
		member.Role = domain.RoleOwner

		team.CreatedBy = newOwnerUserID
		team.UpdatedAt = s.clock.Now()
		if err := repo.UpdateTeam(ctx, team); err != nil {
			return err
		}

		if _, err := s.activity.Record(ctx, tx, &actingUserID, "team_updated",
			activitydomain.TargetFor(activitydomain.TargetTeam, teamID),
			map[string]any{
				"team_id":   teamID.String(),
				"new_owner": newOwnerUserID.String(),
			},
		); err != nil {
			return err
		}

		promoted = member
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("team ownership transferred",
		zap.String("team_id", teamID.String()),
		zap.String("from", actingUserID.String()),
		zap.String("to", newOwnerUserID.String()),
	)
	return promoted, nil
}

// CreateInvite upserts the PENDING invite for (team, email): re-inviting
// while one is open updates its role and inviter instead of duplicating.
func (s *service) CreateInvite(ctx context.Context, teamID snowflake.ID, req domain.CreateInviteRequest) (*domain.Invite, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}
	role := req.Role
	if role == "" {
		role = domain.RoleMember
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	team, err := s.repo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	invite, err := s.upsertPendingInvite(ctx, teamID, email, role, req.InvitedBy)
	if db.IsDuplicateKeyErr(err) {
		// Lost an insert race on ux_team_invites_pending. The winning row is
		// committed by now, so a second pass updates it in place.
		invite, err = s.upsertPendingInvite(ctx, teamID, email, role, req.InvitedBy)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("invite created",
		zap.String("team_id", teamID.String()),
		zap.String("email", email),
	)
	s.enqueueInviteEmail(team.Name, *invite)
	return invite, nil
}

func (s *service) upsertPendingInvite(ctx context.Context, teamID snowflake.ID, email string, role domain.Role, invitedBy snowflake.ID) (*domain.Invite, error) {
	var invite *domain.Invite
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		member, err := repo.HasMemberWithEmail(ctx, teamID, email)
		if err != nil {
			return err
		}
		if member {
			return domain.ErrAlreadyMember
		}

		existing, err := repo.GetPendingInvite(ctx, teamID, email, true)
		switch {
		case err == nil:
			existing.Role = role
			existing.InvitedBy = invitedBy
			if err := repo.UpdateInvite(ctx, existing); err != nil {
				return err
			}
			invite = existing
			return nil
		case errors.Is(err, domain.ErrInviteNotFound):
			fresh := domain.Invite{
				ID:        s.genID.Generate(),
				Token:     newInviteToken(),
				TeamID:    teamID,
				Email:     email,
				Role:      role,
				InvitedBy: invitedBy,
				Status:    domain.InvitePending,
				CreatedAt: s.clock.Now(),
			}
			if err := repo.CreateInvite(ctx, &fresh); err != nil {
				return err
			}
			invite = &fresh
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return invite, nil
}

func (s *service) AcceptInvite(ctx context.Context, token string, userID snowflake.ID, userEmail string) (*domain.Membership, error) {
	invite, err := s.repo.GetInviteByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	if invite.Status != domain.InvitePending {
		return nil, domain.ErrInviteNotPending
	}
	if !strings.EqualFold(invite.Email, strings.TrimSpace(userEmail)) {
		return nil, domain.ErrInviteEmailMismatch
	}

	var member *domain.Membership
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.clock.Now()

		existing, err := repo.GetMembership(ctx, invite.TeamID, userID)
		switch {
		case err == nil:
			if existing.Role != invite.Role {
				if err := repo.UpdateMembershipRole(ctx, existing.ID, invite.Role); err != nil {
					return err
				}
				existing.Role = invite.Role
			}
			member = existing
		case errors.Is(err, domain.ErrNotAMember):
			fresh := domain.Membership{
				ID:       s.genID.Generate(),
				TeamID:   invite.TeamID,
				UserID:   userID,
				Role:     invite.Role,
				JoinedAt: now,
			}
			if err := repo.CreateMembership(ctx, &fresh); err != nil {
				return err
			}
			member = &fresh
		default:
			return err
		}

		invite.Status = domain.InviteAccepted
		invite.RespondedAt = &now
		return repo.UpdateInvite(ctx, invite)
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *service) RevokeInvite(ctx context.Context, teamID snowflake.ID, token string) (*domain.Invite, error) {
	invite, err := s.repo.GetInviteByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	if invite.TeamID != teamID {
		return nil, domain.ErrInviteNotFound
	}
	if invite.Status != domain.InvitePending {
		return nil, domain.ErrInviteNotPending
	}

	now := s.clock.Now()
	invite.Status = domain.InviteRevoked
	invite.RespondedAt = &now
	if err := s.repo.UpdateInvite(ctx, invite); err != nil {
		return nil, err
	}
	return invite, nil
}

func (s *service) enqueueInviteEmail(teamName string, invite domain.Invite) {
	if s.jobs == nil || s.mailer == nil {
		return
	}
	body, err := mailer.RenderInvite(mailer.InviteData{
		TeamName: teamName,
		Role:     string(invite.Role),
		Token:    invite.Token,
	})
	if err != nil {
		s.log.Warn("failed to render invite email", zap.Error(err))
		return
	}
	to := invite.Email
	subject := "You're invited to join " + teamName
	s.jobs.Enqueue(jobs.Job{
		Name: "send_invite_email",
		Run: func(ctx context.Context) error {
			return s.mailer.Send(ctx, []string{to}, subject, body)
		},
	})
}

// newInviteToken returns 128 random bits, hex-encoded.
func newInviteToken() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
