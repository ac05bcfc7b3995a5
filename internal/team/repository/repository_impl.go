package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/taskhive/taskhive/internal/team/domain"
	"github.com/taskhive/taskhive/pkg/db"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) domain.Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) CreateTeam(ctx context.Context, team *domain.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *repository) GetTeam(ctx context.Context, id snowflake.ID) (*domain.Team, error) {
	var team domain.Team
	err := r.db.WithContext(ctx).First(&team, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *repository) UpdateTeam(ctx context.Context, team *domain.Team) error {
	return r.db.WithContext(ctx).Save(team).Error
}

func (r *repository) ListTeamsByUser(ctx context.Context, userID snowflake.ID) ([]domain.TeamListItem, error) {
	var items []domain.TeamListItem
	err := r.db.WithContext(ctx).Raw(
		`SELECT t.id, t.name, t.slug, m.role, t.created_at
		 FROM teams t
		 JOIN team_members m ON m.team_id = t.id
		 WHERE m.user_id = ?
		 ORDER BY t.name ASC`,
		userID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) GetMembership(ctx context.Context, teamID, userID snowflake.ID) (*domain.Membership, error) {
	var member domain.Membership
	err := r.db.WithContext(ctx).
		First(&member, "team_id = ? AND user_id = ?", teamID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotAMember
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) CreateMembership(ctx context.Context, member *domain.Membership) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repository) UpdateMembershipRole(ctx context.Context, membershipID snowflake.ID, role domain.Role) error {
	return r.db.WithContext(ctx).
		Model(&domain.Membership{}).
		Where("id = ?", membershipID).
		Update("role", role).Error
}

func (r *repository) DeleteMembership(ctx context.Context, membershipID snowflake.ID) error {
	return r.db.WithContext(ctx).
		Delete(&domain.Membership{}, "id = ?", membershipID).Error
}

func (r *repository) ListMembers(ctx context.Context, teamID snowflake.ID) ([]domain.Membership, error) {
	var members []domain.Membership
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("joined_at asc, id asc").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) OwnerMemberships(ctx context.Context, teamID snowflake.ID, forUpdate bool) ([]domain.Membership, error) {
	stmt := r.db.WithContext(ctx)
	if forUpdate {
		stmt = db.ForUpdate(stmt)
	}
	var owners []domain.Membership
	err := stmt.
		Where("team_id = ? AND role = ?", teamID, domain.RoleOwner).
		Find(&owners).Error
	if err != nil {
		return nil, err
	}
	return owners, nil
}

func (r *repository) DemoteOtherOwners(ctx context.Context, teamID, keepUserID snowflake.ID, to domain.Role) error {
	return r.db.WithContext(ctx).
		Model(&domain.Membership{}).
		Where("team_id = ? AND role = ? AND user_id <> ?", teamID, domain.RoleOwner, keepUserID).
		Update("role", to).Error
}

func (r *repository) HasMemberWithEmail(ctx context.Context, teamID snowflake.ID, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("team_members").
		Joins("JOIN users ON users.id = team_members.user_id").
		Where("team_members.team_id = ? AND users.email = ?", teamID, email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) GetPendingInvite(ctx context.Context, teamID snowflake.ID, email string, forUpdate bool) (*domain.Invite, error) {
	stmt := r.db.WithContext(ctx)
	if forUpdate {
		stmt = db.ForUpdate(stmt)
	}
	var invite domain.Invite
	err := stmt.
		First(&invite, "team_id = ? AND email = ? AND status = ?", teamID, email, domain.InvitePending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *repository) GetInviteByToken(ctx context.Context, token string) (*domain.Invite, error) {
	var invite domain.Invite
	err := r.db.WithContext(ctx).First(&invite, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *repository) CreateInvite(ctx context.Context, invite *domain.Invite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *repository) UpdateInvite(ctx context.Context, invite *domain.Invite) error {
	return r.db.WithContext(ctx).Save(invite).Error
}
