package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/taskhive/taskhive/internal/board/domain"
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

func (r *repository) CreateBoard(ctx context.Context, board *domain.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

func (r *repository) GetBoard(ctx context.Context, id snowflake.ID) (*domain.Board, error) {
	var board domain.Board
	err := r.db.WithContext(ctx).First(&board, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrBoardNotFound
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *repository) UpdateBoard(ctx context.Context, board *domain.Board) error {
	return r.db.WithContext(ctx).Save(board).Error
}

func (r *repository) ListBoardsByProject(ctx context.Context, projectID snowflake.ID) ([]domain.Board, error) {
	var boards []domain.Board
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at asc, id asc").
		Find(&boards).Error
	if err != nil {
		return nil, err
	}
	return boards, nil
}

func (r *repository) CreateList(ctx context.Context, list *domain.List) error {
	return r.db.WithContext(ctx).Create(list).Error
}

func (r *repository) GetList(ctx context.Context, id snowflake.ID) (*domain.List, error) {
	var list domain.List
	err := r.db.WithContext(ctx).First(&list, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrListNotFound
	}
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *repository) ListsByBoard(ctx context.Context, boardID snowflake.ID) ([]domain.List, error) {
	var lists []domain.List
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("position asc, id asc").
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *repository) MaxListPosition(ctx context.Context, boardID snowflake.ID) (int, error) {
	var row struct {
		Max *int `gorm:"column:max_position"`
	}
	err := r.db.WithContext(ctx).Raw(
		`SELECT MAX(position) AS max_position FROM board_lists WHERE board_id = ?`,
		boardID,
	).Scan(&row).Error
	if err != nil {
		return 0, err
	}
	if row.Max == nil {
		return -1, nil
	}
	return *row.Max, nil
}
