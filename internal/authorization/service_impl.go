// Package authorization answers "may this user do this to this team's data".
// It is a pure predicate layer consulted at the HTTP boundary; services below
// it enforce data-integrity invariants only and never re-check access.
package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectTeam     = "team"
	ObjectMember   = "member"
	ObjectInvite   = "invite"
	ObjectProject  = "project"
	ObjectBoard    = "board"
	ObjectTask     = "task"
	ObjectSubtask  = "subtask"
	ObjectComment  = "comment"
	ObjectActivity = "activity"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionTeamTransfer = "team.transfer"
	ActionMemberAdd    = "member.add"
	ActionMemberRemove = "member.remove"
	ActionInviteRevoke = "invite.revoke"
	ActionTaskMove     = "task.move"
)

type Service interface {
	Authorize(ctx context.Context, userID, teamID snowflake.ID, object, action string) error
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, userID, teamID snowflake.ID, object, action string) error {
	if userID == 0 {
		return ErrInvalidActor
	}
	if teamID == 0 {
		return ErrInvalidTeam
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	role, err := s.roleForUser(ctx, teamID, userID)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("user:%s", userID.String())
	roleName := fmt.Sprintf("role:%s", strings.ToLower(role))
	domain := fmt.Sprintf("team:%s", teamID.String())
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("subject", subject),
			zap.String("team_id", teamID.String()),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) roleForUser(ctx context.Context, teamID, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM team_members
		 WHERE team_id = ? AND user_id = ?
		 LIMIT 1`,
		teamID,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

// ensureGrouping keeps the enforcer's user->role link for this team in step
// with the membership table, replacing a stale link after a role change.
func (s *ServiceImpl) ensureGrouping(subject, roleName, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	readObjects := []string{
		ObjectTeam, ObjectMember, ObjectInvite, ObjectProject,
		ObjectBoard, ObjectTask, ObjectSubtask, ObjectComment, ObjectActivity,
	}

	// Day-to-day task work, shared by member and above.
	memberWork := [][]string{
		{ObjectTask, ActionCreate},
		{ObjectTask, ActionUpdate},
		{ObjectTask, ActionTaskMove},
		{ObjectSubtask, ActionCreate},
		{ObjectSubtask, ActionUpdate},
		{ObjectComment, ActionCreate},
		{ObjectComment, ActionUpdate},
	}

	// Team administration short of ownership.
	adminWork := [][]string{
		{ObjectTeam, ActionUpdate},
		{ObjectMember, ActionMemberAdd},
		{ObjectMember, ActionMemberRemove},
		{ObjectInvite, ActionCreate},
		{ObjectInvite, ActionInviteRevoke},
		{ObjectProject, ActionCreate},
		{ObjectProject, ActionUpdate},
		{ObjectBoard, ActionCreate},
		{ObjectBoard, ActionUpdate},
		{ObjectTask, ActionDelete},
		{ObjectSubtask, ActionDelete},
		{ObjectComment, ActionDelete},
	}

	ownerWork := [][]string{
		{ObjectTeam, ActionTeamTransfer},
		{ObjectTeam, ActionDelete},
		{ObjectProject, ActionDelete},
		{ObjectBoard, ActionDelete},
	}

	grants := map[string][][]string{
		"role:viewer": nil,
		"role:member": memberWork,
		"role:admin":  append(append([][]string{}, memberWork...), adminWork...),
		"role:owner":  append(append(append([][]string{}, memberWork...), adminWork...), ownerWork...),
	}

	for role, work := range grants {
		for _, obj := range readObjects {
			if _, err := enforcer.AddPolicy(role, obj, ActionView); err != nil {
				return err
			}
		}
		for _, grant := range work {
			if _, err := enforcer.AddPolicy(role, grant[0], grant[1]); err != nil {
				return err
			}
		}
	}
	return nil
}
