package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/taskhive/taskhive/internal/board/domain"
	"github.com/taskhive/taskhive/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("board.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Create stores the board and seeds the default lists in order, atomically.
func (s *service) Create(ctx context.Context, projectID snowflake.ID, name string) (*domain.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	board := domain.Board{
		ID:        s.genID.Generate(),
		ProjectID: projectID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateBoard(ctx, &board); err != nil {
			return err
		}
		for i, listName := range domain.DefaultListNames {
			list := domain.List{
				ID:       s.genID.Generate(),
				BoardID:  board.ID,
				Name:     listName,
				Position: i,
			}
			if err := repo.CreateList(ctx, &list); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &board, nil
}

func (s *service) Rename(ctx context.Context, boardID snowflake.ID, name string) (*domain.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	board, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	board.Name = name
	board.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateBoard(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *service) GetByID(ctx context.Context, boardID snowflake.ID) (*domain.Board, error) {
	return s.repo.GetBoard(ctx, boardID)
}

func (s *service) ListByProject(ctx context.Context, projectID snowflake.ID) ([]domain.Board, error) {
	return s.repo.ListBoardsByProject(ctx, projectID)
}

// AddList appends a list after the board's current last position.
func (s *service) AddList(ctx context.Context, boardID snowflake.ID, name string) (*domain.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if _, err := s.repo.GetBoard(ctx, boardID); err != nil {
		return nil, err
	}

	var list domain.List
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		max, err := repo.MaxListPosition(ctx, boardID)
		if err != nil {
			return err
		}
		list = domain.List{
			ID:       s.genID.Generate(),
			BoardID:  boardID,
			Name:     name,
			Position: max + 1,
		}
		return repo.CreateList(ctx, &list)
	})
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *service) Lists(ctx context.Context, boardID snowflake.ID) ([]domain.List, error) {
	return s.repo.ListsByBoard(ctx, boardID)
}

func (s *service) GetList(ctx context.Context, listID snowflake.ID) (*domain.List, error) {
	return s.repo.GetList(ctx, listID)
}
