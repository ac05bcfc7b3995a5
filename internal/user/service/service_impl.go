package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/taskhive/taskhive/internal/clock"
	"github.com/taskhive/taskhive/internal/jobs"
	"github.com/taskhive/taskhive/internal/mailer"
	"github.com/taskhive/taskhive/internal/user/domain"
	"github.com/taskhive/taskhive/internal/user/repository"
	"github.com/taskhive/taskhive/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Params struct {
	fx.In

	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   repository.Repository
	Jobs   *jobs.Queue     `optional:"true"`
	Mailer mailer.Provider `optional:"true"`
}

type service struct {
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   repository.Repository
	jobs   *jobs.Queue
	mailer mailer.Provider
}

func NewService(p Params) domain.Service {
	return &service{
		log:    p.Log.Named("user.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		jobs:   p.Jobs,
		mailer: p.Mailer,
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return nil, domain.ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}

	s.enqueueWelcomeEmail(user)
	return &user, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *service) GetByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *service) UpdateProfile(ctx context.Context, id snowflake.ID, req domain.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		user.Bio = strings.TrimSpace(*req.Bio)
	}
	user.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) enqueueWelcomeEmail(user domain.User) {
	if s.jobs == nil || s.mailer == nil {
		return
	}
	body, err := mailer.RenderWelcome(mailer.WelcomeData{Name: user.DisplayName()})
	if err != nil {
		s.log.Warn("failed to render welcome email", zap.Error(err))
		return
	}
	to := user.Email
	s.jobs.Enqueue(jobs.Job{
		Name: "send_welcome_email",
		Run: func(ctx context.Context) error {
			return s.mailer.Send(ctx, []string{to}, "Welcome to TaskHive", body)
		},
	})
}
